// Package cmd runs the desktop helpers abt hands card links to.
//
// Failures carry the helper's stderr, so a missing browser handler reads
// as the helper's own message rather than a bare exit status:
//
//	if err := cmd.Run(ctx, "xdg-open", url); err != nil {
//	    // err is "xdg-open: no method available for opening '...'"
//	}
package cmd
