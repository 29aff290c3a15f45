// Package useragent classifies User-Agent strings into the device, browser
// and operating system fields the session registry stores, and renders the
// short labels shown in the conflict dialog ("Safari on iOS (mobile)").
//
// Classification is keyword based and intentionally coarse: it only has to
// tell a user which of their devices holds the other session.
package useragent
