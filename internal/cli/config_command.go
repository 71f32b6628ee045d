package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  `Prints the configuration after defaults, the config file and VEX_* environment overrides are applied.`,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			settings, err := LoadSettings(a.cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("marshalling config: %w", err)
			}
			fmt.Fprintf(a.errOut, "# %s\n", a.configPath())
			_, err = a.out.Write(data)
			return err
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			settings, err := LoadSettings(a.cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if _, err := settings.Config("warn"); err != nil {
				return err
			}
			if err := SaveSettings(settings, a.cfgFile); err != nil {
				return err
			}
			fmt.Fprintf(a.errOut, "Configuration saved to %s\n", a.configPath())
			return nil
		},
	})
	return cmd
}
