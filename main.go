package main

import (
	"github.com/mj1618/botvision/cmd"

	_ "github.com/mj1618/botvision/internal/platform/desktop"
	_ "github.com/mj1618/botvision/internal/vision/tesseract"
)

func main() {
	cmd.Execute()
}
