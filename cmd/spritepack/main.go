package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/tilekit/spritepack"
	"github.com/tilekit/spritepack/utils"
	"golang.org/x/term"
)

const helpBanner = `
┌─┐┌─┐┬─┐┬┌┬┐┌─┐┌─┐┌─┐┌─┐┬┌─
└─┐├─┘├┬┘│ │ ├┤ ├─┘├─┤│  ├┴┐
└─┘┴  ┴└─┴ ┴ └─┘┴  ┴ ┴└─┘┴ ┴

Generate MapLibre/Mapbox spritesheets from a directory of SVG icons.
    Version: %s

`

// maxWorkers sets the maximum number of concurrently running rasterizers.
const maxWorkers = 20

// Version indicates the current build version.
var Version string

var (
	// Flags
	input     = flag.String("in", "", "Directory of SVG icons to include in the spritesheet")
	output    = flag.String("out", "", "Name prefix of the spritesheet and index files")
	ratio     = flag.Int("ratio", 1, "Output pixel ratio")
	retina    = flag.Bool("retina", false, "Set the pixel ratio to 2 (equivalent to -ratio=2)")
	unique    = flag.Bool("unique", false, "Store identical images only once and map them to multiple names")
	sdf       = flag.Bool("sdf", false, "Generate signed distance field icons")
	minify    = flag.Bool("minify", false, "Remove whitespace from the JSON index file")
	spacing   = flag.Int("spacing", 0, "Number of padding pixels between sprites")
	recursive = flag.Bool("recursive", false, "Include icons in sub-directories")
	workers   = flag.Int("conc", runtime.NumCPU(), "Number of icons to rasterize concurrently")
)

// clampWorkers bounds the rasterizer pool size to [1, maxWorkers], defaulting
// to the CPU count (itself clamped) when the requested value is not positive.
func clampWorkers(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return utils.Min(n, maxWorkers)
}

// result holds one rasterized icon or the error that stopped it.
type result struct {
	name   string
	sprite *spritepack.Sprite
	err    error
}

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide an input directory and an output name!", utils.ErrorMessage))
	}
	if info, err := os.Stat(*input); err != nil || !info.IsDir() {
		log.Fatalf(utils.DecorateText("The input %q must be an existing directory!", utils.ErrorMessage), *input)
	}
	if *retina {
		if *ratio != 1 {
			log.Fatal(utils.DecorateText("The -ratio and -retina flags cannot be combined!", utils.ErrorMessage))
		}
		*ratio = 2
	}
	if *ratio < 1 {
		log.Fatal(utils.DecorateText("The pixel ratio must be greater than zero!", utils.ErrorMessage))
	}
	*workers = clampWorkers(*workers)

	now := time.Now()
	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	var spinner *utils.Spinner
	if interactive {
		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ SPRITEPACK", utils.StatusMessage),
			utils.DecorateText("is assembling the spritesheet...", utils.DefaultMessage))
		spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)
		spinner.Start()
	}

	sheet, count, err := generate()
	if spinner != nil {
		spinner.StopMsg = fmt.Sprintf("%s %s\n",
			utils.DecorateText("⚡ SPRITEPACK", utils.StatusMessage),
			utils.DecorateText("is assembling the spritesheet... ✔", utils.DefaultMessage))
		spinner.Stop()
	}
	if err != nil {
		log.Fatalf("%s%s",
			utils.DecorateText("Error generating the spritesheet: ", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage))
	}

	if err := sheet.Save(*output + ".png"); err != nil {
		log.Fatalf("%s%s",
			utils.DecorateText("Error saving the spritesheet: ", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage))
	}
	if err := sheet.SaveIndex(*output, *minify); err != nil {
		log.Fatalf("%s%s",
			utils.DecorateText("Error saving the index file: ", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage))
	}

	fmt.Fprintf(os.Stderr, "\nPacked %s icons into: %s %s\n",
		utils.DecorateText(fmt.Sprintf("%d", count), utils.SuccessMessage),
		utils.DecorateText(*output+".png", utils.SuccessMessage),
		utils.DefaultColor)
	fmt.Fprintf(os.Stderr, "Execution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// generate rasterizes every icon of the input directory on a worker pool,
// collects the full name to sprite mapping and hands it to the packer. The
// collection step is the synchronization barrier: packing starts only after
// every rasterization finished.
func generate() (*spritepack.Spritesheet, int, error) {
	paths, err := spritepack.FindVectorPaths(*input, *recursive)
	if err != nil {
		return nil, 0, err
	}

	pathChan := make(chan string)
	go func() {
		defer close(pathChan)
		for _, path := range paths {
			pathChan <- path
		}
	}()

	resChan := make(chan result)
	var wg sync.WaitGroup
	wg.Add(*workers)
	for i := 0; i < *workers; i++ {
		go func() {
			defer wg.Done()
			for path := range pathChan {
				resChan <- rasterizeFile(path)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resChan)
	}()

	sprites := make(map[string]*spritepack.Sprite, len(paths))
	var firstErr error
	for res := range resChan {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		sprites[res.name] = res.sprite
	}
	if firstErr != nil {
		return nil, 0, firstErr
	}

	sheet, err := spritepack.New(sprites, spritepack.Config{
		Spacing: *spacing,
		Unique:  *unique,
		SDF:     *sdf,
	})
	if err != nil {
		return nil, 0, err
	}
	return sheet, len(sprites), nil
}

// rasterizeFile loads and rasterizes a single SVG file.
func rasterizeFile(path string) result {
	name, err := spritepack.SpriteName(path, *input)
	if err != nil {
		return result{err: err}
	}
	vector, err := spritepack.LoadVector(path)
	if err != nil {
		return result{err: err}
	}

	var sprite *spritepack.Sprite
	if *sdf {
		sprite, err = spritepack.NewSpriteSDF(vector, *ratio)
	} else {
		sprite, err = spritepack.NewSprite(vector, *ratio)
	}
	if err != nil {
		return result{name: name, err: fmt.Errorf("%s: %w", path, err)}
	}
	return result{name: name, sprite: sprite}
}
