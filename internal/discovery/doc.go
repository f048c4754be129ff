// Package discovery finds customers APIs on the local network with mDNS.
//
// The mock backend advertises itself as "_customers._tcp" in the "local."
// domain when started with --advertise; the client browses for that type
// with "customers discover" or picks the single answer with --discover.
//
// # Usage Example
//
//	services, err := discovery.Browse(ctx, 3*time.Second)
//	if err != nil {
//	    return err
//	}
//	svc, err := discovery.PickOne(services)
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(svc.URL())
//
// Advertising blocks until its context ends:
//
//	go discovery.Advertise(ctx, "customers-mock", 3000, map[string]string{
//	    "path": "/api/customers",
//	})
package discovery
