/*
Package spritepack converts a directory of SVG icons into a spritesheet: a
single composited PNG image plus a JSON index describing where each icon
lives, following the Mapbox/MapLibre Style Specification sprite format.

The package provides a command line interface. To check the supported
commands type:

	$ spritepack --help

In case you wish to integrate the API in a self constructed environment here
is a simple example:

	package main

	import (
		"log"

		"github.com/tilekit/spritepack"
	)

	func main() {
		paths, err := spritepack.FindVectorPaths("icons", false)
		if err != nil {
			log.Fatal(err)
		}

		sprites := make(map[string]*spritepack.Sprite)
		for _, path := range paths {
			v, err := spritepack.LoadVector(path)
			if err != nil {
				log.Fatal(err)
			}
			name, _ := spritepack.SpriteName(path, "icons")
			sprites[name], err = spritepack.NewSprite(v, 1)
			if err != nil {
				log.Fatal(err)
			}
		}

		sheet, err := spritepack.New(sprites, spritepack.Config{Unique: true})
		if err != nil {
			log.Fatal(err)
		}
		if err := sheet.Save("sprite.png"); err != nil {
			log.Fatal(err)
		}
		if err := sheet.SaveIndex("sprite", false); err != nil {
			log.Fatal(err)
		}
	}
*/
package spritepack
