// Package universe resolves the instrument list for each asset class.
// Screened lists come from plain-text files; classes without a file fall
// back to the built-in liquid ETF defaults.
package universe

import (
	"errors"
	"fmt"
	"os"

	"TechScreen/internal/domain/models"
	"TechScreen/pkg/logger"
	"TechScreen/pkg/util"
)

var defaults = map[models.AssetClass][]string{
	models.ClassEquities:    {"SPY", "QQQ", "IWM", "DIA", "VTI", "XLK", "XLF", "XLE"},
	models.ClassBonds:       {"TLT", "IEF", "SHY", "LQD", "HYG", "TIP", "BND", "AGG"},
	models.ClassCommodities: {"DBC", "USO", "UNG", "DBA", "GSG", "PDBC"},
	models.ClassGolds:       {"GLD", "IAU", "GDX", "GDXJ", "SGOL"},
}

// Provider implements repository.UniverseProvider.
type Provider struct {
	files map[models.AssetClass]string
	log   *logger.Logger
}

// New builds a provider. files maps asset classes to symbol-file paths and
// may be nil or partial.
func New(files map[models.AssetClass]string, log *logger.Logger) *Provider {
	return &Provider{files: files, log: log}
}

// Universe returns the instrument list for class. A configured file that is
// absent or empty falls back to the defaults; a file that exists but cannot
// be read is an error. Unconfigured classes use the defaults directly.
func (p *Provider) Universe(class models.AssetClass) ([]string, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("unknown asset class %q", class)
	}
	if path, ok := p.files[class]; ok && path != "" {
		symbols, err := util.LoadSymbolFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			p.log.Warn("universe file not found, using defaults",
				logger.String("asset_class", string(class)),
				logger.String("path", path))
		case err != nil:
			return nil, fmt.Errorf("universe for %s: %w", class, err)
		case len(symbols) > 0:
			return symbols, nil
		default:
			p.log.Warn("universe file is empty, using defaults",
				logger.String("asset_class", string(class)),
				logger.String("path", path))
		}
	}
	out := make([]string, len(defaults[class]))
	copy(out, defaults[class])
	return out, nil
}
