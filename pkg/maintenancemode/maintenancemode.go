package maintenancemode

import (
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// KeyName is the name of the key to enable the maintenance mode.
// If the maintenance mode ConfigMap is mounted as volume, it is also
// the name of the file to read.
const KeyName = "maintenanceMode"

// Checker tells whether maintenance mode is enabled.
type Checker interface {
	IsMaintenanceMode(ctx context.Context) (bool, error)
}

// File is a Checker reading a file that contains "true" if
// maintenance mode is enabled. A missing file disables maintenance
// mode. The file is read on each check.
type File string

// Compiler check for interface compliance
var _ Checker = File("")

// IsMaintenanceMode returns true if maintenance mode is set.
// On errors maintenance mode is considered enabled.
func (f File) IsMaintenanceMode(ctx context.Context) (bool, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return true, errors.Wrapf(err, "invalid configuration: maintenance mode file %q", string(f))
	}
	return strings.TrimSpace(string(data)) == "true", nil
}
