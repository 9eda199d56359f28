/*
Package event describes records of concluded cross-domain transfers and sinks
they are published to.

Each operation of the dealer publishes exactly one event, both on success and
on failure. Inbound failures are observable only via events since there is no
channel to report them back to the sending chain. Events are not retained by
the dealer.

# Events

TransferredTokensToRelayChain event. Produced when local funds are moved to
the relay custodial account and upward message is submitted.

	TransferredTokensToRelayChain:
	  - name: from
	    type: Account
	  - name: asset
	    type: Option<AssetId>
	  - name: dest
	    type: RelayAccount
	  - name: amount
	    type: Integer
	  - name: result
	    type: Result

TransferredTokensToParachain event. Produced when local funds are moved to the
custodial account of the destination parachain and XCMP message is submitted.

	TransferredTokensToParachain:
	  - name: from
	    type: Account
	  - name: asset
	    type: Option<AssetId>
	  - name: paraID
	    type: Integer
	  - name: dest
	    type: Account
	  - name: destAsset
	    type: Option<AssetId>
	  - name: amount
	    type: Integer
	  - name: result
	    type: Result

TransferredTokensFromRelayChain event. Produced when downward transfer from
the relay chain is settled.

	TransferredTokensFromRelayChain:
	  - name: dest
	    type: Account
	  - name: amount
	    type: Integer
	  - name: asset
	    type: Option<AssetId>
	  - name: result
	    type: Result

TransferredTokensViaXCMP event. Produced when XCMP transfer from the sibling
parachain is settled.

	TransferredTokensViaXCMP:
	  - name: paraID
	    type: Integer
	  - name: dest
	    type: Account
	  - name: amount
	    type: Integer
	  - name: asset
	    type: Option<AssetId>
	  - name: result
	    type: Result

InboundMessageRejected event. Produced when inbound message is recognized as a
transfer but its body can not be decoded.

	InboundMessageRejected:
	  - name: source
	    type: Domain
	  - name: type
	    type: String
	  - name: result
	    type: Result
*/
package event
