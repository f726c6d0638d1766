// Package pricing holds the discount domain: product categories, client
// profiles, cart line items and the result of resolving the single discount
// policy that applies to a cart.
package pricing
