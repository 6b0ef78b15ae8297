package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/pipesim/sim"
	"github.com/sarchlab/pipesim/topology"
)

func newLeafSpineCmd() *cobra.Command {
	d := topology.DefaultLeafSpineConfig()

	leafSpineCmd := &cobra.Command{
		Use:   "leafspine",
		Short: "Generate a leaf-spine network description.",
		Long: "`leafspine --output net.yaml` writes a two-tier network in " +
			"which every leaf connects to every spine. Each host sends one " +
			"flow to the host with the same index on the next leaf.",
		Args: cobra.NoArgs,
		RunE: generateLeafSpine,
	}

	leafSpineCmd.Flags().Int("spines", d.Spines, "Number of spine switches.")
	leafSpineCmd.Flags().Int("leaves", d.Leaves, "Number of leaf switches.")
	leafSpineCmd.Flags().Int("hosts", d.HostsPerLeaf, "Number of hosts per leaf.")
	leafSpineCmd.Flags().String("delay", d.Delay.String(), "Delay of every link.")
	leafSpineCmd.Flags().Int("packets", d.PacketsPerFlow,
		"Packets per flow. Zero generates no flows.")
	leafSpineCmd.Flags().String("interval", d.Interval.String(),
		"Time between two packets of a flow.")
	leafSpineCmd.Flags().Uint64("min-size", d.MinSize, "Minimum packet size in bytes.")
	leafSpineCmd.Flags().Uint64("max-size", d.MaxSize, "Maximum packet size in bytes.")
	leafSpineCmd.Flags().StringP("output", "o", "",
		"Output file (.yaml or .json). Prints YAML to stdout if empty.")

	return leafSpineCmd
}

func generateLeafSpine(cmd *cobra.Command, _ []string) error {
	c := topology.LeafSpineConfig{}
	var err error

	c.Spines, _ = cmd.Flags().GetInt("spines")
	c.Leaves, _ = cmd.Flags().GetInt("leaves")
	c.HostsPerLeaf, _ = cmd.Flags().GetInt("hosts")
	c.PacketsPerFlow, _ = cmd.Flags().GetInt("packets")
	c.MinSize, _ = cmd.Flags().GetUint64("min-size")
	c.MaxSize, _ = cmd.Flags().GetUint64("max-size")

	delay, _ := cmd.Flags().GetString("delay")
	if c.Delay, err = sim.ParseDuration(delay); err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetString("interval")
	if c.Interval, err = sim.ParseDuration(interval); err != nil {
		return err
	}

	n, err := topology.LeafSpine(c)
	if err != nil {
		return err
	}

	if err := n.Validate(); err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		return n.WriteToFile(output)
	}

	bytes, err := yaml.Marshal(n)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), string(bytes))

	return err
}
