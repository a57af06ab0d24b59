// Package identifier derives a stable business identifier (for example
// "customer:123") from an arbitrary subject and the active route.
//
// Sources are tried in two rounds: every Property source first, in declared
// order, then every RouteParam source, in declared order. A RouteParam source
// listed before a Property source is therefore still tried after it.
//
//	resolver := identifier.NewDefaultResolver("", []identifier.Source{
//		identifier.Property("customer.id", "customer"),
//		identifier.RouteParam("customer", "customer"),
//	})
//
//	ctx = identifier.WithRoute(ctx, identifier.Params{"customer": "42"})
//	id, ok := resolver.Resolve(ctx, component)
//
// Property paths are walked over Resolvable values, maps, structs (exported
// fields, json tags, zero-argument accessor methods) and slices. A terminal
// value implementing Keyed is replaced by its key. Values considered empty by
// IsEmpty never resolve. Resolution never fails: any lookup problem simply
// moves on to the next source.
package identifier
