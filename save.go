package esx

import (
	"fmt"

	"github.com/meigma/esx/internal/write"
)

// Save encodes the plugin and writes it to path.
//
// The file is replaced atomically (temp file + rename), so a failed save
// leaves any existing file intact. Parent directories are created as needed.
func (p *Plugin) Save(path string) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode plugin: %w", err)
	}
	if err := write.File(path, data); err != nil {
		return fmt.Errorf("write plugin file: %w", err)
	}
	return nil
}
