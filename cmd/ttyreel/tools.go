package main

import (
	"fmt"
	"os/exec"
)

// runner executes an external helper process, discarding its output and
// waiting for it to finish. Injectable so tests never spawn real tools.
type runner interface {
	run(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

// checkTool verifies an external dependency is on $PATH before we get deep
// enough into a replay to need it.
func checkTool(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s is required but was not found: %w", name, err)
	}
	return nil
}
