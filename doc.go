// Package enroll implements email-verified account enrollment and the
// session-token lifecycle that follows it.
//
// Registration flow:
//   - Register validates the payload, delivers a 6-character verification
//     code, and parks the registration in a PendingRegistrations store with
//     a 10 minute TTL. No user record exists at this stage.
//   - VerifyEmail consumes the pending entry when both the submitted code
//     and the requester's network address match what was captured at
//     registration time, creates the user, and mints an access token.
//
// Tokens:
//   - TokenIssuer mints signed bearer secrets bound to a revocation record.
//     Logout and RefreshToken revoke every outstanding token for the user
//     before any new issuance, so at most one session's material is live.
//
// Stores are injected, never ambient: PendingRegistrations has in-memory and
// Redis implementations, users and tokens persist via Bun repositories, and
// the Mailer and AssetStore collaborators own delivery and uploads.
package enroll
