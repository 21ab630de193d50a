//go:build ignore

// Contact sheet builder: tiles the images in a download directory into one
// webp grid for quick review.
//
// Usage: go run tools/contactsheet.go -dir downloads -o sheet.webp -cols 4
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // Import for JPEG decoding
	_ "image/png"  // Import for PNG decoding
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const cell = 256

func main() {
	dir := flag.String("dir", "downloads", "Directory of downloaded images")
	outputFile := flag.String("o", "sheet.webp", "Output file path")
	cols := flag.Int("cols", 4, "Number of columns in the grid")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read directory: %v", err)
	}

	var images []image.Image
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, ".thumb.webp") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".png", ".jpg", ".jpeg", ".webp":
		default:
			continue
		}

		img, err := imaging.Open(filepath.Join(*dir, name))
		if err != nil {
			log.Printf("Skipping %s: %v", name, err)
			continue
		}
		images = append(images, imaging.Fill(img, cell, cell, imaging.Center, imaging.Lanczos))
	}

	if len(images) == 0 {
		fmt.Println("No images found.")
		os.Exit(1)
	}

	rows := (len(images) + *cols - 1) / *cols
	sheet := image.NewRGBA(image.Rect(0, 0, *cols*cell, rows*cell))
	for i, img := range images {
		x := (i % *cols) * cell
		y := (i / *cols) * cell
		draw.Draw(sheet, image.Rect(x, y, x+cell, y+cell), img, image.Point{}, draw.Src)
	}

	out, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer out.Close()

	if err := webp.Encode(out, sheet, &webp.Options{Quality: 85}); err != nil {
		log.Fatalf("Failed to encode contact sheet: %v", err)
	}
	log.Printf("Wrote %d images to %s (%dx%d grid)", len(images), *outputFile, *cols, rows)
}
