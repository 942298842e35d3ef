package device

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"emurig/internal/catalog"
	"emurig/internal/ports"
)

func testSpawnSpec() SpawnSpec {
	return SpawnSpec{
		Candidate: catalog.AppCandidate{
			Path:            "/coinapps/nanos/1.6/bitcoin/app_1.3.1.elf",
			Model:           "nanoS",
			FirmwareVersion: "1.6",
			AppName:         "bitcoin",
			AppVersion:      "1.3.1",
		},
		Seed:         "abandon art",
		CoinappsRoot: "/coinapps",
		Image:        "ghcr.io/ledgerhq/speculos",
	}
}

func newTestSupervisor(runner ContainerRunner) (*Supervisor, *Registry) {
	reg := NewRegistry(runner)
	return NewSupervisor(runner, ports.NewAllocator(), reg), reg
}

func TestSpawnBecomesReadyOnMarker(t *testing.T) {
	runner := &fakeRunner{}
	sup, reg := newTestSupervisor(runner)

	inst, err := sup.Spawn(context.Background(), testSpawnSpec())
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	if _, ok := reg.Get(inst.ID); !ok {
		t.Fatal("instance must be registered after spawn")
	}

	runner.lastProc().writeStderr("seproxyhal: using SDK version 2.0")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := inst.WaitReady(ctx); err != nil {
		t.Fatalf("expected readiness, got %v", err)
	}
	if inst.State() != StateReady {
		t.Fatalf("expected ready state, got %v", inst.State())
	}
}

func TestSpawnFailsReadinessWhenProcessExits(t *testing.T) {
	runner := &fakeRunner{}
	sup, reg := newTestSupervisor(runner)

	inst, err := sup.Spawn(context.Background(), testSpawnSpec())
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	runner.lastProc().exit(errors.New("exit status 1"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = inst.WaitReady(ctx)
	var launch *LaunchError
	if !errors.As(err, &launch) {
		t.Fatalf("expected LaunchError, got %v", err)
	}

	// The exit watcher destroys the record.
	if !waitFor(2*time.Second, func() bool {
		_, ok := reg.Get(inst.ID)
		return !ok
	}) {
		t.Fatal("instance should be removed after process exit")
	}
}

func TestReadinessIsSticky(t *testing.T) {
	runner := &fakeRunner{}
	sup, reg := newTestSupervisor(runner)

	inst, err := sup.Spawn(context.Background(), testSpawnSpec())
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	runner.lastProc().writeStderr("seproxyhal: using SDK version 2.0")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := inst.WaitReady(ctx); err != nil {
		t.Fatalf("expected readiness, got %v", err)
	}

	// Termination after readiness must not flip the signal, but still
	// trigger the automatic destroy.
	runner.lastProc().exit(errors.New("exit status 137"))
	if !waitFor(2*time.Second, func() bool {
		_, ok := reg.Get(inst.ID)
		return !ok
	}) {
		t.Fatal("instance should be auto-destroyed after exit")
	}
	if err := inst.WaitReady(context.Background()); err != nil {
		t.Fatalf("readiness outcome must stay resolved, got %v", err)
	}
	if got := runner.removals(); len(got) != 1 {
		t.Fatalf("expected one removal, got %v", got)
	}
}

func TestMarkerAfterDestroyKeepsDestroyedState(t *testing.T) {
	runner := &fakeRunner{}
	sup, reg := newTestSupervisor(runner)

	inst, err := sup.Spawn(context.Background(), testSpawnSpec())
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	runner.lastProc().writeStderr("seproxyhal: using SDK version 2.0")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := inst.WaitReady(ctx); err != nil {
		t.Fatalf("expected readiness, got %v", err)
	}
	if err := reg.Destroy(ctx, inst.ID); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}

	// The orphaned process may keep printing; a repeated marker must not
	// revive the record.
	runner.lastProc().writeStderr("seproxyhal: using SDK version 2.0")
	if waitFor(100*time.Millisecond, func() bool { return inst.State() == StateReady }) {
		t.Fatal("destroyed instance flipped back to ready")
	}
	if inst.State() != StateDestroyed {
		t.Fatalf("expected destroyed state, got %v", inst.State())
	}
}

func TestMarkerAfterEarlyDestroyKeepsDestroyedState(t *testing.T) {
	runner := &fakeRunner{}
	sup, reg := newTestSupervisor(runner)

	inst, err := sup.Spawn(context.Background(), testSpawnSpec())
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := reg.Destroy(ctx, inst.ID); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}

	// First marker ever, but it arrives after the destroy.
	runner.lastProc().writeStderr("seproxyhal: using SDK version 2.0")
	if waitFor(100*time.Millisecond, func() bool { return inst.State() == StateReady }) {
		t.Fatal("destroyed instance flipped back to ready")
	}
}

func TestContainerArgs(t *testing.T) {
	spec := testSpawnSpec()
	spec.DependencyName = "Bitcoin"
	spec.DependencyPath = "/coinapps/nanos/1.6/Bitcoin/app_2.1.0.elf"

	args := containerArgs("speculos-1", ports.For(1), spec)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-v /coinapps:/speculos-coinapps",
		"-p 40001:40000",
		"-p 41001:41000",
		"-p 42001:42000",
		"-p 43001:43000",
		"-e SPECULOS_APPNAME=bitcoin:1.3.1",
		"--name speculos-1",
		"ghcr.io/ledgerhq/speculos",
		"--model nanos",
		"/speculos-coinapps/nanos/1.6/bitcoin/app_1.3.1.elf",
		"-l Bitcoin:/speculos-coinapps/nanos/1.6/Bitcoin/app_2.1.0.elf",
		"--sdk 1.6",
		"--seed abandon art",
		"--display headless",
		"--apdu-port 40000",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q in %q", want, joined)
		}
	}
	if args[0] != "run" {
		t.Errorf("expected docker run form, got %q", args[0])
	}
}

func TestSdkVersion(t *testing.T) {
	cases := map[string]string{
		"1.6":     "1.6",
		"2.0.2":   "2.0",
		"1.6.1.9": "1.6",
		"weird":   "weird",
	}
	for fw, want := range cases {
		if got := sdkVersion(fw); got != want {
			t.Errorf("sdkVersion(%q) = %q, want %q", fw, got, want)
		}
	}
}
