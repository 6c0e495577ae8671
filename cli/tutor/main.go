package main

import (
	"context"
	"fmt"
	"os"

	tutorcmder "github.com/wahida/tutor/cmd/tutor"
	"github.com/wahida/tutor/pkg/cliui"
)

func main() {
	cmd := tutorcmder.NewTutorCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cliui.FailMark, err)
		os.Exit(1)
	}
}
