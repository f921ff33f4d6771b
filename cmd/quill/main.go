package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/quillfmt/quill"
)

type cli struct {
	Template string `arg:"" help:"Format template, e.g. '{name} scored {}'."`
	JSON     string `short:"j" help:"JSON arguments: an object pushes named arguments, an array positional ones."`
	Pack     string `short:"p" type:"existingfile" help:"Read arguments from a binary argument pack instead of JSON."`
	EmitPack string `help:"Write the parsed arguments as a binary argument pack to this path and exit." type:"path"`
}

func main() {
	log.SetFlags(0)

	var args cli
	kong.Parse(&args,
		kong.Name("quill"),
		kong.Description("Render a quill format template against JSON arguments or an argument pack."),
		kong.UsageOnError(),
	)

	store, err := loadStore(args)
	if err != nil {
		log.Fatal(err)
	}

	if args.EmitPack != "" {
		pack, err := quill.EncodeStore(store)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(args.EmitPack, pack, 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("quill: wrote %d argument(s) to %s", store.Len(), args.EmitPack)
		return
	}

	out, err := quill.VFormat(args.Template, store.Args())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
}

func loadStore(args cli) (*quill.Store, error) {
	switch {
	case args.Pack != "" && args.JSON != "":
		return nil, fmt.Errorf("use either --json or --pack, not both")
	case args.Pack != "":
		data, err := os.ReadFile(args.Pack)
		if err != nil {
			return nil, err
		}
		return quill.DecodeStore(data)
	case args.JSON != "":
		return quill.StoreFromJSON([]byte(args.JSON))
	default:
		return quill.NewStore(), nil
	}
}
