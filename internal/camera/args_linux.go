//go:build linux
// +build linux

package camera

// recordArgs builds the ffmpeg command line capturing V4L2 video and ALSA audio into output
func recordArgs(device, audio, output string) ([]string, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostats", "-y",
		"-f", "v4l2", "-i", device,
	}
	if audio != "" && audio != "none" {
		args = append(args, "-f", "alsa", "-i", audio, "-c:a", "aac")
	}
	args = append(args,
		"-c:v", "libx264", "-preset", "veryfast", "-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		output,
	)
	return args, nil
}

// grabArgs builds the ffmpeg command line writing a single JPEG frame to stdout
func grabArgs(device string) ([]string, error) {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostats",
		"-f", "v4l2", "-i", device,
		"-frames:v", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "pipe:1",
	}, nil
}
