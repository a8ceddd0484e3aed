package main

import (
	"fmt"
)

// encodeArgs builds the ImageMagick invocation that turns the captured
// frames into one animation: each frame's hold delay immediately followed
// by its image, in display order, then a whole-animation optimize pass and
// the artifact path. Delay text is passed through from the timing file
// untouched.
func encodeArgs(frames []frame, artifact string) []string {
	args := []string{"convert"}
	for _, f := range frames {
		args = append(args, "-delay", f.DelayText, f.Path)
	}
	args = append(args, "-layers", "Optimize", artifact)
	return args
}

// assemble runs the encoder once, synchronously, over the completed frame
// list. Encoder failure is fatal to the run; there is no partial-animation
// fallback, though already-captured frames stay on disk.
func assemble(run runner, frames []frame, artifact string) error {
	args := encodeArgs(frames, artifact)
	if err := run.run(args[0], args[1:]...); err != nil {
		return fmt.Errorf("encoding %s: %w", artifact, err)
	}
	return nil
}

// openViewer hands the finished animation to the configured viewer.
func openViewer(run runner, viewer, artifact string) error {
	if err := run.run(viewer, artifact); err != nil {
		return fmt.Errorf("opening %s with %s: %w", artifact, viewer, err)
	}
	return nil
}
