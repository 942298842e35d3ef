package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"emurig/internal/logging"
)

const (
	binaryPrefix = "app_"
	binarySuffix = ".elf"
)

// ScanError reports a directory-listing failure during candidate discovery.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Scan walks the coinapps tree (model / firmware / app / app_<version>.elf)
// and returns every discovered binary as an ordered candidate list: model
// priority first, then firmware version descending, then app version
// descending. The ordering is load-bearing; FindFirst relies on it to
// prefer the newest candidate that satisfies a loose search.
func Scan(root string) ([]AppCandidate, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}

	var modelDirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, ok := CanonicalModel(e.Name()); ok {
			modelDirs = append(modelDirs, e.Name())
		}
	}
	sort.SliceStable(modelDirs, func(i, j int) bool {
		return modelPriority(modelDirs[i]) < modelPriority(modelDirs[j])
	})

	var out []AppCandidate
	for _, modelDir := range modelDirs {
		model, _ := CanonicalModel(modelDir)
		modelPath := filepath.Join(root, modelDir)

		firmwares, err := orderedFirmwares(modelPath)
		if err != nil {
			return nil, err
		}
		for _, fw := range firmwares {
			fwPath := filepath.Join(modelPath, fw)
			appEntries, err := os.ReadDir(fwPath)
			if err != nil {
				return nil, &ScanError{Path: fwPath, Err: err}
			}
			for _, app := range appEntries {
				if !app.IsDir() {
					continue
				}
				appPath := filepath.Join(fwPath, app.Name())
				candidates, err := appBinaries(appPath, model, fw, app.Name())
				if err != nil {
					return nil, err
				}
				out = append(out, candidates...)
			}
		}
	}
	return out, nil
}

// orderedFirmwares lists firmware directories sorted descending by
// normalized version, ties kept in listing order.
func orderedFirmwares(modelPath string) ([]string, error) {
	entries, err := os.ReadDir(modelPath)
	if err != nil {
		return nil, &ScanError{Path: modelPath, Err: err}
	}

	type fwDir struct {
		name string
		ver  *semver.Version
	}
	var dirs []fwDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ver, err := semver.NewVersion(Normalize(e.Name()))
		if err != nil {
			logging.Debugf("skipping firmware dir %s: %v", filepath.Join(modelPath, e.Name()), err)
			continue
		}
		dirs = append(dirs, fwDir{name: e.Name(), ver: ver})
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return dirs[i].ver.GreaterThan(dirs[j].ver)
	})

	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, d.name)
	}
	return out, nil
}

// appBinaries lists one app directory's binaries, newest version first.
// Files whose embedded version does not parse are skipped, not errors.
func appBinaries(appPath, model, firmware, appName string) ([]AppCandidate, error) {
	files, err := os.ReadDir(appPath)
	if err != nil {
		return nil, &ScanError{Path: appPath, Err: err}
	}

	type versioned struct {
		cand AppCandidate
		ver  *semver.Version
	}
	var found []versioned
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if !strings.HasPrefix(name, binaryPrefix) || !strings.HasSuffix(name, binarySuffix) {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, binaryPrefix), binarySuffix)
		ver, err := semver.StrictNewVersion(raw)
		if err != nil {
			logging.Debugf("skipping binary %s: %v", filepath.Join(appPath, name), err)
			continue
		}
		found = append(found, versioned{
			cand: AppCandidate{
				Path:            filepath.Join(appPath, name),
				Model:           model,
				FirmwareVersion: firmware,
				AppName:         appName,
				AppVersion:      raw,
			},
			ver: ver,
		})
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].ver.GreaterThan(found[j].ver)
	})

	out := make([]AppCandidate, 0, len(found))
	for _, v := range found {
		out = append(out, v.cand)
	}
	return out, nil
}
