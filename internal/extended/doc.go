// Package extended provides typed codecs for LDAP extended operations.
//
// A typed request converts to a generic ldap.ExtendedRequest for the wire and
// wraps the generic result it gets back:
//
//	req, err := extended.NewEndTransactionRequest(txnID, true)
//	res, err := req.Process(ctx, conn, 0)
//	if res.FailedOpMessageID() > 0 {
//	    // the operation with that message id failed
//	}
package extended
