package main

import (
	"fmt"
	"os"
	"strconv"

	"unblur/lib"
)

// Dumps the first frame of a video (or a still image) next to its
// sharpened version, for eyeballing kernel levels before a full run.
func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Println("usage: framepreview media_path [sharpness_level]")
		os.Exit(1)
	}
	mediaFname := os.Args[1]
	level := lib.DefaultLevel
	if len(os.Args) == 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Println("sharpness_level must be an integer:", err)
			os.Exit(1)
		}
		level = n
	}

	var im lib.Image
	switch lib.DetectMediaKind(mediaFname) {
	case lib.MediaVideo:
		meta, err := lib.ProbeVideo(mediaFname)
		if err != nil {
			fmt.Println("probe failed:", err)
			os.Exit(1)
		}
		vreader, err := lib.OpenVideoReader(mediaFname, meta)
		if err != nil {
			fmt.Println("open failed:", err)
			os.Exit(1)
		}
		defer vreader.Close()

		bvr := lib.NewBufferedVideoReader(vreader, 1)
		frame, eof := bvr.GetFrame(0)
		if eof {
			fmt.Println("video has no frames")
			os.Exit(1)
		}
		im = frame.Copy()
		bvr.Stop()
	case lib.MediaImage:
		frame, err := lib.LoadImageFile(mediaFname)
		if err != nil {
			fmt.Println("load failed:", err)
			os.Exit(1)
		}
		im = frame
	default:
		fmt.Println("unrecognized media type:", mediaFname)
		os.Exit(1)
	}

	if err := os.WriteFile("original.png", im.AsPNG(), 0644); err != nil {
		panic(err)
	}

	sharpened, err := lib.Sharpen(im, lib.BuildKernel(level))
	if err != nil {
		fmt.Println("sharpen failed:", err)
		os.Exit(1)
	}
	if err := os.WriteFile("sharpened.png", sharpened.AsPNG(), 0644); err != nil {
		panic(err)
	}

	fmt.Printf("wrote original.png and sharpened.png (level %d)\n", lib.ClampLevel(level))
}
