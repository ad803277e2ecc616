package video

import (
	"context"
	"fmt"
	"os/exec"
)

// EncodeWithFilter re-encodes a recording through a textual filter chain.
// This is the fallback output path for environments where the in-process
// compositor is unavailable: the zoom/pan work happens inside ffmpeg.
func EncodeWithFilter(ctx context.Context, inputPath, outputPath, filter, encoderName string, quality, fps int) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", filter,
		"-r", fmt.Sprintf("%d", fps),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}
	args = append(args, qualityArgs(encoderName, quality)...)
	args = append(args, "-c:a", "copy", outputPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg filter encode: %w, output: %s", err, string(out))
	}
	return nil
}

// qualityArgs maps a generic quality number onto encoder-specific flags
func qualityArgs(encoderName string, quality int) []string {
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox rejects -q:v on many versions, so drive it by bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}
