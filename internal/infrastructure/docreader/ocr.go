package docreader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ReadImage runs the identity document through the OCR binary (tesseract by
// default, writing recognized text to stdout). Same never-throw contract as
// Read: a missing binary or a failed recognition becomes sentinel text.
func (r *Reader) ReadImage(ctx context.Context, path string) string {
	if _, err := os.Stat(path); err != nil {
		return ocrFailure(err)
	}

	cmd := exec.CommandContext(ctx, r.ocrBinary, path, "stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return ocrFailure(fmt.Errorf("%w: %s", err, msg))
		}
		return ocrFailure(err)
	}
	return stdout.String()
}

func ocrFailure(err error) string {
	return fmt.Sprintf("Error processing image: %v", err)
}
