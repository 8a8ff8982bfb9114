package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/obasdk/internal/client"
	"github.com/KilimcininKorOglu/obasdk/internal/extended"
)

// errNoTransactionID is returned when end-txn is run without --txn-id.
var errNoTransactionID = errors.New("--txn-id is required")

func newEndTxnCmd(a *app) *cobra.Command {
	var (
		address      string
		txnID        string
		abort        bool
		bindDN       string
		bindPassword string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "end-txn",
		Short: "Commit or abort an LDAP transaction",
		Long: `Sends an end transaction extended request (RFC 5805) for the given
transaction id and prints the server's result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if txnID == "" {
				return errNoTransactionID
			}
			cfg := a.cfg.Client
			if cmd.Flags().Changed("address") {
				cfg.Address = address
			}
			if cmd.Flags().Changed("bind-dn") {
				cfg.BindDN = bindDN
			}
			if cmd.Flags().Changed("bind-password") {
				cfg.BindPassword = bindPassword
			}
			if cmd.Flags().Changed("timeout") {
				cfg.ResponseTimeout = timeout
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			conn, err := client.Dial(ctx, cfg.Address,
				client.WithDialTimeout(cfg.DialTimeout),
				client.WithResponseTimeout(cfg.ResponseTimeout),
				client.WithMaxMessageSize(cfg.MaxMessageSize),
				client.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			defer conn.Close()

			if cfg.BindDN != "" {
				if err := conn.Bind(ctx, cfg.BindDN, []byte(cfg.BindPassword)); err != nil {
					return err
				}
			}

			req, err := extended.NewEndTransactionRequest([]byte(txnID), !abort)
			if err != nil {
				return err
			}
			res, err := req.Process(ctx, conn, 0)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.stdout, res.String())
			if err := conn.Unbind(); err != nil {
				a.logger.Debug("unbind failed", "error", err)
			}
			if !res.ResultCode.IsSuccess() {
				return fmt.Errorf("end transaction failed: %s", res.LDAPResult)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Server address (host:port or ldap://host:port)")
	cmd.Flags().StringVar(&txnID, "txn-id", "", "Transaction identifier")
	cmd.Flags().BoolVar(&abort, "abort", false, "Abort instead of commit")
	cmd.Flags().StringVar(&bindDN, "bind-dn", "", "DN to bind as before ending the transaction")
	cmd.Flags().StringVar(&bindPassword, "bind-password", "", "Bind password")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Response timeout")
	return cmd
}
