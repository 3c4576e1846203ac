// Package iconstitch turns glyph placeholders in a web project into
// imports of locally stored icon assets.
//
// A placeholder is any element whose class attribute carries the marker
// token (by default the Material Symbols "material-symbols-outlined" class)
// and whose inner text names a glyph:
//
//	<span className="material-symbols-outlined">home</span>
//
// The pipeline scans the project's sources for placeholders, fetches every
// referenced glyph from the remote catalog through a browser session, compiles
// the asset directory into generated index modules and finally rewrites each
// placeholder into an accessor of that tree:
//
//	import assets from "./assets";
//	<assets.home />
//
// The CLI lives in cmd/iconstitch; this root package exposes the same
// pipeline as a Go API.
//
// # Quick start
//
//	session := catalog.NewSession(catalog.Config{DownloadDir: "src/assets"}, nil)
//	defer session.Close()
//	if err := session.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := iconstitch.Run(ctx, iconstitch.Options{
//	    Sources:   []string{"src"},
//	    AssetsDir: "src/assets",
//	    Flavor:    assets.FlavorComponent,
//	    Fetcher:   session,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("ICONS.md", []byte(result.Markdown), 0644)
//
// A nil [Options.Fetcher] skips acquisition, so the asset tree already on
// disk is indexed and injected as is.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
package iconstitch
