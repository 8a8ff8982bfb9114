// Package client provides a minimal synchronous LDAP connection for sending
// extended operations.
//
//	conn, err := client.Dial(ctx, "ldap://localhost:389", client.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer conn.Unbind()
//
//	req, _ := extended.NewEndTransactionRequest(txnID, true)
//	res, err := req.Process(ctx, conn, 0)
//
// Conn implements extended.Processor. Response controls are decoded through
// the ldap package registry, so packages that register decoders (controls,
// extended) must be imported for their typed values to be attached.
package client
