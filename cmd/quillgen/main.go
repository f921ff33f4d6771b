package main

import (
	"log"
	"path/filepath"

	"github.com/alecthomas/kong"
)

type cli struct {
	Dir string `help:"Root directory to scan for Go packages." default:"."`
}

func main() {
	log.SetFlags(0)

	var args cli
	kong.Parse(&args,
		kong.Name("quillgen"),
		kong.Description("Generate quill FormatArg methods for structs with quill-tagged fields."),
		kong.UsageOnError(),
	)

	absDir, err := filepath.Abs(args.Dir)
	if err != nil {
		log.Fatal(err)
	}

	moduleRoot, modulePath, err := findModuleRoot(absDir)
	if err != nil {
		log.Fatal(err)
	}

	infos, err := collectPackageInfos(absDir)
	if err != nil {
		log.Fatal(err)
	}

	wrote := 0
	removed := 0
	for _, info := range infos {
		if len(info.Structs) == 0 {
			wasRemoved, err := removeGeneratedFile(info.Dir)
			if err != nil {
				log.Fatal(err)
			}
			if wasRemoved {
				removed++
			}
			continue
		}

		src, err := generatePackage(info, moduleRoot, modulePath)
		if err != nil {
			log.Fatal(err)
		}

		outPath := filepath.Join(info.Dir, "quill_gen.go")
		changed, err := writeFileIfChanged(outPath, src)
		if err != nil {
			log.Fatal(err)
		}
		if changed {
			wrote++
		}
	}

	switch {
	case wrote == 0 && removed == 0:
		log.Printf("quillgen: no changes")
	case wrote > 0 && removed > 0:
		log.Printf("quillgen: wrote %d package(s), removed %d", wrote, removed)
	case wrote > 0:
		log.Printf("quillgen: wrote %d package(s)", wrote)
	case removed > 0:
		log.Printf("quillgen: removed %d package(s)", removed)
	}
}
