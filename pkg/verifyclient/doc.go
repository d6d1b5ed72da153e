// Package verifyclient is the HTTP client for the centralized verification
// server that approves web logins on behalf of this device.
//
// A Client is bound to one application (API URL, app id, shared secret and
// device id) and is constructed explicitly with New and passed to whoever
// needs it; there is no process-wide instance. Every request carries a fresh
// device signature from package signature.
//
// Calls never return transport errors directly. Network failures, timeouts,
// non-2xx responses and success:false bodies are normalized into a Result
// with Success=false, a user-presentable Message (the server's message when
// it sent one) and Err wrapping ErrNetworkFailure or ErrRemoteRejection.
// Calls on a nil or zero-value Client report ErrClientNotInitialized.
//
// Each call is bounded by a timeout (10 seconds by default) and is never
// retried.
//
//	client, err := verifyclient.New(verifyclient.Config{
//	    APIURL:   acc.APIURL,
//	    AppID:    acc.AppID,
//	    Secret:   acc.Secret,
//	    DeviceID: deviceID,
//	})
//	if err != nil {
//	    return err
//	}
//	res := client.VerifyLogin(ctx, verifyclient.VerifyRequest{
//	    Email:     req.Email,
//	    TempToken: req.TempToken,
//	    Method:    "totp",
//	    TOTPCode:  code,
//	})
//	if !res.Success {
//	    fmt.Println(res.Message)
//	}
package verifyclient
