package main

import (
	"fmt"

	"github.com/gosuri/uiprogress"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/storage"
)

// importCommand copies a JSON dictionary file into a SQLite database.
func importCommand(opts ConvertOptions, ui UI) error {
	return convert(opts, true, ui)
}

// exportCommand writes a SQLite dictionary back as a JSON file.
func exportCommand(opts ConvertOptions, ui UI) error {
	return convert(opts, false, ui)
}

func convert(opts ConvertOptions, create bool, ui UI) error {
	var pools Pools
	defer pools.Close()

	src, err := NewDictRepository(&pools, opts.From, false)
	if err != nil {
		return err
	}

	dst, err := NewDictRepository(&pools, opts.To, create)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Reading dictionary from %s...\n", opts.From)
	d, err := src.Read()
	if err != nil {
		return err
	}

	if err := writeWithProgress(dst, d, opts.NoProgress); err != nil {
		return fmt.Errorf("failed to write dictionary to %s: %w", opts.To, err)
	}

	fmt.Fprintf(ui.Out, "Successfully wrote %d keys from %s to %s\n", len(d), opts.From, opts.To)
	return nil
}

func writeWithProgress(dst storage.DictWriter, d coord.Dictionary, quiet bool) error {
	if quiet || len(d) == 0 {
		return dst.Write(d, nil)
	}

	uiprogress.Start()
	defer uiprogress.Stop()

	bar := uiprogress.AddBar(len(d))
	bar.AppendCompleted()
	bar.PrependElapsed()

	return dst.Write(d, func(current, total int, key string) {
		bar.Incr()
	})
}
