package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/obasdk/internal/controls"
	"github.com/KilimcininKorOglu/obasdk/internal/ldap"
)

// errNoDecoder is returned when no decoder is registered for an OID.
var errNoDecoder = errors.New("no decoder registered")

func newControlCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control",
		Short: "Inspect LDAP control values",
	}
	cmd.AddCommand(newControlDecodeCmd(a), newControlListCmd(a))
	return cmd
}

func newControlDecodeCmd(a *app) *cobra.Command {
	var (
		oid      string
		value    string
		critical bool
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a hex encoded control value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(strings.ReplaceAll(value, " ", ""))
			if err != nil {
				return fmt.Errorf("invalid hex value: %w", err)
			}
			ctrl, err := ldap.DecodeControl(ldap.NewControl(oid, critical, raw))
			if err != nil {
				return err
			}
			typed, ok := ctrl.Decoded().(fmt.Stringer)
			if !ok {
				return fmt.Errorf("%w: %s", errNoDecoder, oid)
			}
			fmt.Fprintln(a.stdout, typed.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&oid, "oid", controls.GeneratePasswordResponseOID, "Control OID")
	cmd.Flags().StringVar(&value, "value", "", "Control value as hex")
	cmd.Flags().BoolVar(&critical, "critical", false, "Mark the control critical")
	return cmd
}

func newControlListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List OIDs with registered decoders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, "Controls:")
			for _, oid := range ldap.RegisteredControlOIDs() {
				fmt.Fprintf(a.stdout, "  %s\n", oid)
			}
			fmt.Fprintln(a.stdout, "Extended requests:")
			for _, oid := range ldap.RegisteredExtendedRequestOIDs() {
				fmt.Fprintf(a.stdout, "  %s\n", oid)
			}
			return nil
		},
	}
}
