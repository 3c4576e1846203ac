package indexer

import (
	"fmt"
	"strings"

	"github.com/kataras/iconstitch/pkg/assets"
)

const componentHeader = `import React from 'react';

// createSvgComponent wraps raw svg markup in a span that merges caller props.
export function createSvgComponent(svgString: string) {
  return function SvgComponent(props: React.HTMLAttributes<HTMLSpanElement>) {
    return <span {...props} dangerouslySetInnerHTML={{ __html: svgString }} />;
  };
}`

const directiveHeader = "import { unsafeHTML } from 'lit/directives/unsafe-html.js';\n\n" +
	"// glyph returns an accessor rendering the svg, optionally inside a span carrying attrs.\n" +
	"const glyph = (svg: string) => (attrs: string = \"\") =>\n" +
	"  unsafeHTML(attrs ? `<span ${attrs}>${svg}</span>` : svg);"

var templateEscaper = strings.NewReplacer("\\", "\\\\", "`", "\\`", "$", "\\$")

// renderModule returns the source of one directory module. Every binding
// gets a local name prefixed with an underscore so reserved words such as
// "delete" remain usable as glyph identifiers.
func renderModule(flavor assets.Flavor, bindings []binding) string {
	var sb strings.Builder

	sb.WriteString(GeneratedMarker + "\n")
	sb.WriteString("/* eslint-disable */\n")

	switch flavor {
	case assets.FlavorComponent:
		sb.WriteString(componentHeader + "\n")
	case assets.FlavorDirective:
		sb.WriteString(directiveHeader + "\n")
	}
	sb.WriteString("\n")

	for _, bd := range bindings {
		local := "_" + bd.id
		switch bd.kind {
		case bindDir, bindRaster:
			sb.WriteString(fmt.Sprintf("import %s from \"./%s\";\n", local, bd.file))
		case bindVector:
			sb.WriteString(fmt.Sprintf("const %s = `%s`;\n", local, templateEscaper.Replace(bd.markup)))
		}
	}

	sb.WriteString("\nexport default {\n")
	for _, bd := range bindings {
		local := "_" + bd.id
		value := local
		if bd.kind == bindVector {
			switch flavor {
			case assets.FlavorComponent:
				value = fmt.Sprintf("createSvgComponent(%s)", local)
			case assets.FlavorDirective:
				value = fmt.Sprintf("glyph(%s)", local)
			}
		}
		sb.WriteString(fmt.Sprintf("  %s: %s,\n", bd.id, value))
	}
	sb.WriteString("};\n")

	return sb.String()
}
