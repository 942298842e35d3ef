package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"emurig/internal/catalog"
	"emurig/internal/logging"
	"emurig/internal/ports"
)

// readyMarker is printed on the emulator's diagnostic stream once the app
// runtime has initialized.
const readyMarker = "using SDK"

// containerMount is where the coinapps root appears inside the container.
const containerMount = "/speculos-coinapps"

// SpawnSpec describes one emulator launch.
type SpawnSpec struct {
	Candidate      catalog.AppCandidate
	DependencyName string
	DependencyPath string
	Seed           string
	CoinappsRoot   string
	Image          string
}

// Supervisor launches emulator containers, watches their output for the
// readiness marker, and destroys instances whose process dies.
type Supervisor struct {
	runner   ContainerRunner
	alloc    *ports.Allocator
	registry *Registry
}

func NewSupervisor(runner ContainerRunner, alloc *ports.Allocator, registry *Registry) *Supervisor {
	return &Supervisor{runner: runner, alloc: alloc, registry: registry}
}

// Spawn starts the emulator process and registers the instance. The caller
// synchronizes on Instance.WaitReady; readiness resolves successfully the
// first time the marker appears on stderr, or with a LaunchError if the
// process exits first.
func (s *Supervisor) Spawn(ctx context.Context, spec SpawnSpec) (*Instance, error) {
	n, portSet := s.alloc.Next()
	id := fmt.Sprintf("speculos-%d", n)

	proc, err := s.runner.Start(ctx, containerArgs(id, portSet, spec))
	if err != nil {
		return nil, fmt.Errorf("start emulator %s: %w", id, err)
	}

	inst := &Instance{
		ID:        id,
		Ports:     portSet,
		Candidate: spec.Candidate,
		proc:      proc,
		ready:     newReadySignal(),
		state:     StateStarting,
	}
	s.registry.Register(inst)
	logging.Infof("spawned %s: %s %s %s %s apdu=%d", id,
		spec.Candidate.Model, spec.Candidate.FirmwareVersion,
		spec.Candidate.AppName, spec.Candidate.AppVersion, portSet.APDU)

	go s.watchStdout(inst)
	go s.watchStderr(inst)
	go s.watchExit(inst)
	return inst, nil
}

// containerArgs builds the deterministic docker invocation: volume mount of
// the binary root, the four host-port bindings onto the fixed internal
// ports, app identifier env, container name, image, then the emulator's own
// flags (model, app path, optional dependency library, sdk, seed, headless
// display, fixed port flags).
func containerArgs(id string, p ports.PortSet, spec SpawnSpec) []string {
	args := []string{
		"run",
		"-v", fmt.Sprintf("%s:%s", spec.CoinappsRoot, containerMount),
		"-p", fmt.Sprintf("%d:%d", p.APDU, ports.InternalAPDU),
		"-p", fmt.Sprintf("%d:%d", p.VNC, ports.InternalVNC),
		"-p", fmt.Sprintf("%d:%d", p.Button, ports.InternalButton),
		"-p", fmt.Sprintf("%d:%d", p.Automation, ports.InternalAutomation),
		"-e", fmt.Sprintf("SPECULOS_APPNAME=%s:%s", spec.Candidate.AppName, spec.Candidate.AppVersion),
		"--name", id,
		spec.Image,
		"--model", strings.ToLower(spec.Candidate.Model),
		containerPath(spec.CoinappsRoot, spec.Candidate.Path),
	}
	if spec.DependencyName != "" {
		args = append(args, "-l", fmt.Sprintf("%s:%s",
			spec.DependencyName, containerPath(spec.CoinappsRoot, spec.DependencyPath)))
	}
	args = append(args,
		"--sdk", sdkVersion(spec.Candidate.FirmwareVersion),
		"--seed", spec.Seed,
		"--display", "headless",
		"--vnc-port", fmt.Sprintf("%d", ports.InternalVNC),
		"--apdu-port", fmt.Sprintf("%d", ports.InternalAPDU),
		"--button-port", fmt.Sprintf("%d", ports.InternalButton),
		"--automation-port", fmt.Sprintf("%d", ports.InternalAutomation),
	)
	return args
}

// containerPath rewrites a host binary path to its in-container location.
func containerPath(root, hostPath string) string {
	return strings.Replace(hostPath, root, containerMount, 1)
}

// sdkVersion derives the emulator --sdk flag (major.minor) from the
// firmware directory name. Falls back to the raw name if it cannot parse.
func sdkVersion(firmware string) string {
	v, err := semver.NewVersion(catalog.Normalize(firmware))
	if err != nil {
		return firmware
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// watchStdout logs the emulator's stdout; it is never interpreted.
func (s *Supervisor) watchStdout(inst *Instance) {
	sc := bufio.NewScanner(inst.proc.Stdout())
	for sc.Scan() {
		logging.Debugf("%s stdout: %s", inst.ID, sc.Text())
	}
}

// watchStderr logs the diagnostic stream and fires the readiness signal the
// first time the marker appears. Later lines are still logged but no longer
// affect readiness.
func (s *Supervisor) watchStderr(inst *Instance) {
	sc := bufio.NewScanner(inst.proc.Stderr())
	for sc.Scan() {
		line := sc.Text()
		logging.Debugf("%s stderr: %s", inst.ID, line)
		if strings.Contains(line, readyMarker) && inst.ready.resolve(nil) {
			inst.markReady()
		}
	}
}

// watchExit waits for process termination. Exit before readiness fails the
// pending wait; exit at any point triggers an idempotent destroy of the
// record. The supervisor never restarts an instance.
func (s *Supervisor) watchExit(inst *Instance) {
	err := inst.proc.Wait()
	if err == nil {
		err = errors.New("process terminated")
	}
	inst.ready.resolve(&LaunchError{ID: inst.ID, Err: err})
	logging.Warnf("emulator %s exited: %v", inst.ID, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if derr := s.registry.Destroy(ctx, inst.ID); derr != nil {
		logging.Warnf("cleanup after exit of %s: %v", inst.ID, derr)
	}
}
