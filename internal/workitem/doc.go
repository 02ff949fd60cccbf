// Package workitem defines the card and sprint types shared by the boards
// client, the cache and the enrichment engine.
//
// Work items arrive from the backend as a loosely typed field bag
// (map of reference name to value). This package keeps that bag as-is so
// synthetic fields can be added during enrichment, but exposes typed
// accessors for the fields the rest of abt reads:
//
//	card.Fields.Title()          // System.Title
//	card.Fields.Type()           // System.WorkItemType
//	card.Fields.Parent()         // System.Parent, normalised to int
//	card.Fields.Ref("Parent")    // synthetic {Id, Title} written by enrichment
//
// Decoded items are checked by [WorkItem.Validate] before they leave the
// boards package, so callers can rely on a positive ID and a non-nil
// field map.
package workitem
