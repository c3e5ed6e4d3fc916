package stowman

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stowman/internal/version"
	"github.com/arthur-debert/stowman/pkg/cobrax/topics"
	"github.com/arthur-debert/stowman/pkg/commands"
	"github.com/arthur-debert/stowman/pkg/logging"
)

// NewRootCmd creates the root command wired to the real process
// environment.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithEnvironment(Environment{})
}

// NewRootCmdWithEnvironment creates the root command around env.
func NewRootCmdWithEnvironment(env Environment) *cobra.Command {
	initTemplateFormatting()

	a := &app{env: env.withDefaults()}

	rootCmd := &cobra.Command{
		Use:     "stowman",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLoggerWithOutput(a.verbosity, a.env.Stderr)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("stowman {{.Version}} (commit %s, built %s)\n", version.Commit, version.Date))
	rootCmd.SetOut(a.env.Stdout)
	rootCmd.SetErr(a.env.Stderr)

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.dir, "dir", "", MsgFlagDir)
	rootCmd.PersistentFlags().StringVar(&a.color, "color", "", MsgFlagColor)

	rootCmd.AddGroup(&cobra.Group{ID: "packages", Title: "PACKAGES:"})
	rootCmd.AddGroup(&cobra.Group{ID: "reports", Title: "REPORTS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newStowCmd(a, commands.CommandInstall, MsgInstallShort))
	rootCmd.AddCommand(newStowCmd(a, commands.CommandUninstall, MsgUninstallShort))
	rootCmd.AddCommand(newStowCmd(a, commands.CommandRestow, MsgRestowShort))
	rootCmd.AddCommand(newAdoptCmd(a))
	rootCmd.AddCommand(newNewCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newCompletionCmd())

	if _, err := topics.InitializeWithOptions(rootCmd, Topics(), topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(),
	}); err != nil {
		log.Debug().Err(err).Msg("Help topics unavailable")
	}
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// packageCompletion completes configured package names not yet given.
func packageCompletion(a *app) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		given := make(map[string]bool, len(args))
		for _, arg := range args {
			given[arg] = true
		}
		var names []string
		for _, name := range a.packageNames(cmd.Context()) {
			if !given[name] {
				names = append(names, name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

func newStowCmd(a *app, cmdType commands.CommandType, short string) *cobra.Command {
	var (
		all    bool
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:               string(cmdType) + " [packages...]",
		Short:             short,
		Long:              MsgInstallLong,
		GroupID:           "packages",
		ValidArgsFunction: packageCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().
				Str("command", string(cmdType)).
				Strs("packages", args).
				Bool("all", all).
				Bool("dry_run", dryRun).
				Msg("Running linker command")
			return a.run(cmd.Context(), cmdType, commands.DispatchOptions{
				Packages: args,
				All:      all,
				DryRun:   dryRun,
			})
		},
	}
	switch cmdType {
	case commands.CommandInstall:
		cmd.Example = MsgInstallExample
	case commands.CommandUninstall:
		cmd.Long = MsgUninstallLong
	}
	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func newAdoptCmd(a *app) *cobra.Command {
	var noGit bool
	cmd := &cobra.Command{
		Use:               "adopt <packages...>",
		Short:             MsgAdoptShort,
		Long:              MsgAdoptLong,
		GroupID:           "packages",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), commands.CommandAdopt, commands.DispatchOptions{
				Packages: args,
				NoGit:    noGit,
			})
		},
	}
	cmd.Flags().BoolVar(&noGit, "no-git", false, MsgFlagNoGit)
	return cmd
}

func newNewCmd(a *app) *cobra.Command {
	var opts commands.DispatchOptions
	cmd := &cobra.Command{
		Use:     "new <name>",
		Short:   MsgNewShort,
		Long:    MsgNewLong,
		Example: MsgNewExample,
		GroupID: "packages",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			return a.run(cmd.Context(), commands.CommandNew, opts)
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", MsgFlagFrom)
	cmd.Flags().BoolVar(&opts.Sudo, "sudo", false, MsgFlagSudo)
	cmd.Flags().StringVar(&opts.Target, "target", "", MsgFlagTarget)
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var opts commands.DispatchOptions
	cmd := &cobra.Command{
		Use:               "delete <packages...>",
		Short:             MsgDeleteShort,
		Long:              MsgDeleteLong,
		GroupID:           "packages",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Packages = args
			return a.run(cmd.Context(), commands.CommandDelete, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&opts.KeepFiles, "keep-files", false, MsgFlagKeepFiles)
	cmd.Flags().BoolVar(&opts.NoBackup, "no-backup", false, MsgFlagNoBackup)
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "status [packages...]",
		Short:             MsgStatusShort,
		Long:              MsgStatusLong,
		GroupID:           "reports",
		ValidArgsFunction: packageCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), commands.CommandStatus, commands.DispatchOptions{Packages: args})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "reports",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), commands.CommandList, commands.DispatchOptions{})
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "check [packages...]",
		Short:             MsgCheckShort,
		GroupID:           "reports",
		ValidArgsFunction: packageCompletion(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), commands.CommandCheck, commands.DispatchOptions{Packages: args})
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
