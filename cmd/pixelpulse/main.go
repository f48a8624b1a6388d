package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	servercmd "github.com/manglesh1/Pixelpulse-sub002/internal/cli/servercmd"
)

func main() {
	root := &cobra.Command{Use: "pixelpulse", Short: "Pixelpulse arcade backend"}
	root.AddCommand(servercmd.New())

	comp := &cobra.Command{Use: "completion [bash|zsh|fish]", Short: "Generate shell completion"}
	comp.Run = func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			log.Fatalf("specify a shell: bash|zsh|fish")
		}
		switch args[0] {
		case "bash":
			root.GenBashCompletion(os.Stdout)
		case "zsh":
			root.GenZshCompletion(os.Stdout)
		case "fish":
			root.GenFishCompletion(os.Stdout, true)
		default:
			log.Fatalf("unknown shell: %s", args[0])
		}
	}
	root.AddCommand(comp)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
