package main

import "hy-whisper/cmd/a2t/cmd"

func main() {
	cmd.Execute()
}
