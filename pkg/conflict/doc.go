// Package conflict handles the modal shown when the registry reports that
// the user is already signed in on another device.
//
// A Controller moves between three phases:
//
//	none -> detected     Detect, at most once per login
//	detected -> none     Dismiss or ContinueOnOtherDevice
//	detected -> resolving ContinueHere or LogoutEverywhere
//	resolving -> none    the registry call returned
//
// ContinueHere keeps the user signed in whether or not deactivate_other
// succeeded. LogoutEverywhere signs the user out whether or not
// deactivate_all succeeded.
package conflict
