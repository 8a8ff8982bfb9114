// Package controls provides typed codecs for LDAP response controls.
//
// Importing the package registers its decoders with the ldap registry, so
// ldap.DecodeControls attaches typed values to matching envelopes:
//
//	decoded, err := ldap.DecodeControls(result.Controls)
//	resp, err := controls.GetGeneratePasswordResponse(decoded)
//	if resp != nil {
//	    fmt.Println(resp.PasswordString())
//	}
package controls
