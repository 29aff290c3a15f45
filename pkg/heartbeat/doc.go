// Package heartbeat provides a cancellable repeating task driven by a
// clock.Clock.
//
// The session guard uses it to call the registry's update_activity every
// five minutes while a user is signed in, and stops it in the same step
// that signs the user out so no beat can run after teardown.
package heartbeat
