// Package notifier announces newly discovered events.
//
// The notifier package posts announcements for events created during a
// collection run, with implementations for Twitter and Telegram. It
// handles authentication, pacing between posts and message formatting;
// a dry-run implementation prints the messages instead of posting them.
package notifier
