package uninstall

import "github.com/mesosphere/uninstall-scheduler/internal/offerproto"

// CleanResult is one offer's worth of accept-call input: the offer to
// accept and the operations to accept it with. Offers with nothing to clean
// are simply absent from the returned slice, leaving the caller to decline
// them.
type CleanResult struct {
	OfferID    string
	Operations []offerproto.Operation
}

// Clean implements component E (spec §4.E). It is stateless: given one offer
// cycle's raw offers, it emits the UNRESERVE/DESTROY operations for every
// processable (non-tombstoned) reservation present, one accept batch per
// offer. It does not consult the plan at all — "the cleaner does not need to
// match offers to specific steps... the recorder is responsible for mapping
// operations back to steps."
func Clean(offers []offerproto.Offer) []CleanResult {
	var results []CleanResult
	for _, offer := range offers {
		var ops []offerproto.Operation
		for _, res := range offer.Resources {
			if res.ReservationID == "" || ReservationID(res.ReservationID).IsTombstoned() {
				continue
			}
			if res.Kind == offerproto.ResourceVolume {
				ops = append(ops, offerproto.Operation{Type: offerproto.OpDestroy, Resource: res})
			}
			ops = append(ops, offerproto.Operation{Type: offerproto.OpUnreserve, Resource: res})
		}
		if len(ops) > 0 {
			results = append(results, CleanResult{OfferID: offer.ID, Operations: ops})
		}
	}
	return results
}
