package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// ContainerRunner abstracts the container commands the supervisor shells
// out to, so tests can substitute a fake.
type ContainerRunner interface {
	// Start launches the emulator container and returns a handle on the
	// running process. args are the full `docker` arguments.
	Start(ctx context.Context, args []string) (ContainerProcess, error)
	// Remove force-removes the named container.
	Remove(ctx context.Context, name string) error
}

// ContainerProcess is one started emulator container.
type ContainerProcess interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait blocks until the process exits.
	Wait() error
}

// DockerRunner launches containers through the docker CLI.
type DockerRunner struct{}

func (DockerRunner) Start(ctx context.Context, args []string) (ContainerProcess, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &dockerProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

func (DockerRunner) Remove(ctx context.Context, name string) error {
	out, err := exec.CommandContext(ctx, "docker", "rm", "-f", name).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker rm -f %s: %v: %s", name, err, bytes.TrimSpace(out))
	}
	return nil
}

type dockerProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *dockerProcess) Stdout() io.Reader { return p.stdout }
func (p *dockerProcess) Stderr() io.Reader { return p.stderr }
func (p *dockerProcess) Wait() error       { return p.cmd.Wait() }
