package engine

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spaghettifunk/vista/engine/core"
)

// Screenshot writes the last rendered frame to path as a PNG.
func (e *Engine) Screenshot(path string) error {
	if w, h := e.device.Size(); w == 0 || h == 0 {
		return fmt.Errorf("screenshot '%s': nothing rendered yet", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, e.device.Snapshot()); err != nil {
		f.Close()
		return fmt.Errorf("screenshot '%s': %w", path, err)
	}
	core.LogInfo("screenshot saved to '%s'", path)
	return f.Close()
}
