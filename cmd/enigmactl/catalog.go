package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RowanDark/enigma/internal/rpc"
	"github.com/RowanDark/enigma/internal/service"
)

func newCatalogCmd(a *app) *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the rotors and reflectors a key may use",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := service.BuiltinCatalog()
			if remote != "" {
				client, err := rpc.Dial(remote)
				if err != nil {
					return err
				}
				defer client.Close()
				ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
				defer cancel()
				if catalog, err = client.Catalog(ctx); err != nil {
					return err
				}
			}
			return a.printCatalog(catalog)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "read the catalog from an enigmad gRPC server at this address")
	return cmd
}

func (a *app) printCatalog(catalog service.Catalog) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROTOR\tWIRING\tNOTCH")
	for _, r := range catalog.Rotors {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Wiring, r.Notch)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "REFLECTOR\tWIRING\t")
	for _, r := range catalog.Reflectors {
		fmt.Fprintf(tw, "%s\t%s\t\n", r.ID, r.Wiring)
	}
	return tw.Flush()
}
