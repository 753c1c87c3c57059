package handlers

// Reply keyboard labels.
const (
	BtnCatalog = "🛍 Catalog"
	BtnCart    = "🛒 Cart"
	BtnHelp    = "❓ Help"
)

// Inline button labels.
const (
	ButtonPay        = "💳 Pay"
	ButtonPaid       = "✅ I have paid"
	ButtonCheckout   = "💳 Checkout"
	ButtonClear      = "🧹 Clear"
	ButtonAddToCart  = "➕ Add to cart"
	ButtonBack       = "⬅️ Back"
	ButtonRemoveItem = "❌"
)

const (
	WelcomeText = "👋 Hello, %s! Welcome to EasyShop.\n" +
		"Browse the catalog, fill your cart and pay right here in the chat."
	HelpText = "<b>How to shop</b>\n" +
		"/catalog - browse products\n" +
		"/cart - review your cart\n" +
		"/checkout - pay for the cart\n" +
		"/cancel - stop the current action\n\n" +
		"You can also search products inline: type @%s and a product name in any chat."
	CancelledText = "Okay, cancelled."
)

const (
	CatalogTitle     = "🛍 <b>Catalog</b>\nChoose a product:"
	CatalogEmptyText = "The catalog is empty right now. Please come back later."
	ProductGoneText  = "This product is no longer available."
)

const (
	CartTitle       = "🛒 <b>Your cart</b>"
	CartEmptyText   = "Your cart is empty."
	CartAddedText   = "Added to cart"
	CartRemovedText = "Removed from cart"
	CartClearedText = "Cart cleared"
	QtyPromptText   = "How many <b>%s</b> do you want? Send a number from 0 to %d."
	QtyInvalidText  = "Please send a whole number from 0 to %d."
	QtyTooLargeText = "That is more than we can put in one cart line."
)

const (
	PaymentsDisabledText = "Online payment is not available at the moment."
	CheckoutText         = "🧾 Order total: <b>%s</b>\nTap «Pay» to complete the payment, then press «I have paid»."
	PaidText             = "✅ Payment received. Thank you for your order!"
	PaymentPendingText   = "The payment is not completed yet."
	PaymentCanceledText  = "❌ The payment was cancelled. You can try again with /checkout."
	PaymentUnknownText   = "This payment is no longer active."
	PaymentFailedText    = "⚠️ The payment service rejected the request. Please try /checkout again later."
	AdminPaidText        = "💰 New paid order %s from %s: %s"
)

const (
	StatsText = "📊 <b>Stats</b>\n" +
		"Uptime: %s\n" +
		"Products: %d\n" +
		"Checkouts: %d\n" +
		"Paid orders: %d\n" +
		"Revenue: %s"
	AccessDeniedText = "⛔ This command is for administrators only."
)

const (
	UnknownText     = "I did not get that. Send /help to see what I can do."
	UnsupportedText = "Unsupported action"
	ErrorText       = "⚠️ Something went wrong. Please try again later."
)
