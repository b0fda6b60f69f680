// Command meshcrack is the CLI front end for the meshcrack library: decode a
// group-text packet and search for the room name that decrypts it.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mesh-relay/meshcrack"
)

var (
	flagWordlist       string
	flagMaxLength      int
	flagStartingLength int
	flagNoDictionary   bool
	flagNoTimestamp    bool
	flagValidSeconds   int64
	flagNoUTF8         bool
	flagSenderFilter   bool
	flagStartFrom      string
	flagStartFromType  string
	flagForceCPU       bool
	flagGPUDispatchMs  int64
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	cyan   = color.New(color.FgCyan)
	red    = color.New(color.FgRed, color.Bold)
)

func main() {
	root := &cobra.Command{
		Use:   "meshcrack <hex-packet>",
		Short: "Recover the room name behind an encrypted mesh-radio group-text packet",
		Long: `meshcrack searches for the short, human-chosen room name a group-text
packet's channel key was derived from: first the well-known public room,
then an optional dictionary, then an exhaustive brute-force enumeration.

Example:
  meshcrack --wordlist rooms.txt deadbeef...`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	flags := root.Flags()
	flags.StringVarP(&flagWordlist, "wordlist", "w", "", "file:// or http(s):// URL of a newline-delimited room-name word list")
	flags.IntVar(&flagMaxLength, "max-length", meshcrack.DefaultOptions().MaxLength, "longest brute-force room-name length to try")
	flags.IntVar(&flagStartingLength, "starting-length", meshcrack.DefaultOptions().StartingLength, "shortest brute-force room-name length to try")
	flags.BoolVar(&flagNoDictionary, "no-dictionary", false, "skip the dictionary phase even if a word list is loaded")
	flags.BoolVar(&flagNoTimestamp, "no-timestamp-filter", false, "disable the timestamp-window false-positive filter")
	flags.Int64Var(&flagValidSeconds, "valid-seconds", meshcrack.DefaultOptions().ValidSeconds, "timestamp window, in seconds, for the timestamp filter")
	flags.BoolVar(&flagNoUTF8, "no-utf8-filter", false, "disable the UTF-8 replacement-character false-positive filter")
	flags.BoolVar(&flagSenderFilter, "sender-filter", meshcrack.DefaultOptions().UseSenderFilter, "require a sender field to be present")
	flags.StringVar(&flagStartFrom, "start-from", "", "resume cursor: a room name to resume after")
	flags.StringVar(&flagStartFromType, "start-from-type", "", `resume phase: "dictionary" or "bruteforce" (required if --start-from is set)`)
	flags.BoolVar(&flagForceCPU, "force-cpu", false, "never use the accelerator backend, even if available")
	flags.Int64Var(&flagGPUDispatchMs, "dispatch-target-ms", meshcrack.DefaultOptions().GPUDispatchMs, "auto-tuner's target dispatch duration in milliseconds")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red.Sprint(err))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags()
	if err != nil {
		return err
	}

	client := meshcrack.NewClient(meshcrack.WithWordlistBuildProgress(func(processed, total int) {
		cyan.Fprintf(os.Stderr, "\rindexing word list: %d/%d", processed, total)
		if processed == total {
			fmt.Fprintln(os.Stderr)
		}
	}))
	defer client.Destroy()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if flagWordlist != "" {
		if err := client.LoadWordlist(ctx, flagWordlist); err != nil {
			return fmt.Errorf("loading word list: %w", err)
		}
	}

	if client.IsGPUAvailable() && !flagForceCPU {
		cyan.Fprintln(os.Stderr, "accelerator backend available")
	}

	res := client.Crack(ctx, args[0], opts, func(p meshcrack.ProgressReport) {
		fmt.Fprintf(os.Stderr, "\r%s", p.String())
	})
	fmt.Fprintln(os.Stderr)

	return printResult(res)
}

func optionsFromFlags() (meshcrack.Options, error) {
	opts := meshcrack.DefaultOptions()
	opts.MaxLength = flagMaxLength
	opts.StartingLength = flagStartingLength
	opts.UseDictionary = !flagNoDictionary
	opts.UseTimestampFilter = !flagNoTimestamp
	opts.ValidSeconds = flagValidSeconds
	opts.UseUTF8Filter = !flagNoUTF8
	opts.UseSenderFilter = flagSenderFilter
	opts.ForceCPU = flagForceCPU
	opts.GPUDispatchMs = flagGPUDispatchMs

	if flagStartFrom != "" {
		switch meshcrack.StartFromType(flagStartFromType) {
		case meshcrack.StartFromDictionary, meshcrack.StartFromBruteforce:
			opts.StartFrom = flagStartFrom
			opts.StartFromType = meshcrack.StartFromType(flagStartFromType)
		default:
			return opts, fmt.Errorf("--start-from-type must be %q or %q", meshcrack.StartFromDictionary, meshcrack.StartFromBruteforce)
		}
	}
	return opts, nil
}

func printResult(res meshcrack.Result) error {
	if res.Error != "" {
		return fmt.Errorf("%s", res.Error)
	}
	if res.Aborted {
		yellow.Printf("aborted -- resume with --start-from %q --start-from-type %s\n", res.ResumeFrom, res.ResumeType)
		return nil
	}
	if !res.Found {
		red.Println("no match found")
		fmt.Printf("resume with --start-from %q --start-from-type %s\n", res.ResumeFrom, res.ResumeType)
		return nil
	}
	green.Printf("room name: %s\n", res.RoomName)
	fmt.Printf("message: %s\n", res.DecryptedMessage)
	fmt.Printf("resume with --start-from %q --start-from-type %s (in case this match is a false positive)\n", res.ResumeFrom, res.ResumeType)
	return nil
}
