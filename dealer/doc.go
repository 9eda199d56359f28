/*
Package dealer implements settlement of token transfers between the local
ledger, the relay chain and sibling parachains.

Each external domain is represented on the local ledger by its custodial
account (see package account). Outbound transfers move funds from the sender
to the custodial account of the destination domain and submit a message asking
the destination to release the same amount from the custodial account of this
parachain. Inbound transfers release funds from the custodial account of the
source domain to the recipient.

Outbound operations check everything before the ledger is touched, apply the
debit and the credit in one ledger transaction and submit the message before
the transaction is committed. If submission fails, the transaction is dropped
and common.ErrSend is returned. If the Outbox is configured, the transaction is
committed instead and the message is queued for resubmission.

Inbound operations never fail: the result is published as an event and
returned as Outcome.

Fungible assets are moved by the asset ledger. Native currency is moved with
ledger.KeepAlive policy, so the source always keeps the existential deposit.
*/
package dealer
