package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgUnexpectedErr = `Unexpected error: %s`
	MsgStartPrompt   = "Send a photo of a sneaker to identify and price it."
	MsgVersionInfo   = "Version: %s\nBuilt: %s"
	MsgHelp          = `
		*Sneaker bot*

		Send a photo of a sneaker. The bot identifies the model, predicts a price and checks your inventory.

		/inventory - show the inventory
		/cancel - forget the current result
		/version - show version info
	`
)

// =============================================================================
// Admin command messages
// =============================================================================

const (
	MsgAdminUsage           = "Usage:\n`/admin users add <user_id>`\n`/admin users remove <user_id>`\n`/admin users list`"
	MsgAdminUserAddUsage    = "Usage: `/admin users add <user_id>`"
	MsgAdminUserRemoveUsage = "Usage: `/admin users remove <user_id>`"
	MsgAdminUserInvalidID   = "Invalid user ID. Give a number."
	MsgAdminUserAdded       = "✅ User `%d` added."
	MsgAdminUserRemoved     = "🗑 User `%d` removed."
	MsgAdminNoUsers         = "No allowed users."
	MsgAdminAllowedUsers    = "*Allowed users:*\n"
	MsgAdminNoStore         = "User management is not available."
)

// =============================================================================
// Prediction messages
// =============================================================================

const (
	MsgAnalyzingImage      = "Analyzing image..."
	MsgPredictInFlight     = "Still analyzing the previous photo, please wait."
	MsgPredictFailed       = "Prediction failed: %s\n\nSend the photo again to retry."
	MsgImageDownloadFailed = "Error: could not download the photo"
	MsgNoResult            = "No result yet. Send a photo first."
	MsgResultStale         = "This result is no longer current. Use the button under the latest result."
	MsgResultCleared       = "Result cleared."
)

// =============================================================================
// Add to inventory messages
// =============================================================================

const (
	MsgAddNotOffered   = "This result can't be added to the inventory."
	MsgAddDraftHeader  = "*Add to inventory*"
	MsgAddNewItem      = "New item"
	MsgAddExisting     = "In stock: %d (price %s)"
	MsgAddPriceLine    = "Price: %s"
	MsgAddQuantityLine = "Quantity: %s"
	MsgAddPricePrompt  = "Send a price to change it, or a quantity as `x3`."
	MsgAddInvalid      = "⚠️ %s"
	MsgAddSaving       = "Saving..."
	MsgAddInFlight     = "Still saving, please wait."
	MsgAddFailed       = "Saving failed: %s"
	MsgAddInserted     = "✅ Added to inventory. Quantity: %d"
	MsgAddUpdated      = "✅ Inventory updated. Quantity: %d"
	MsgAddCancelled    = "Not added."
	MsgAddNoSuggestion = "There is no predicted price to use."
)

// =============================================================================
// Inventory dashboard messages
// =============================================================================

const (
	MsgInventoryLoading     = "Loading inventory..."
	MsgInventoryInFlight    = "Inventory is still loading."
	MsgInventoryEmpty       = "Your inventory is empty. Send a photo to add the first pair."
	MsgInventoryFailed      = "Could not load the inventory: %s"
	MsgInventoryHeader      = "*Inventory* (page %d/%d, %s)"
	MsgInventoryImageFailed = "Could not load the image: %s"
	MsgInventoryImageBusy   = "Still loading the previous image."
)

// =============================================================================
// Button labels
// =============================================================================

const (
	BtnSave         = "💾 Save"
	BtnCancel       = "✖ Cancel"
	BtnUseSuggested = "Use suggested price"
	BtnPrev         = "⬅️"
	BtnNext         = "➡️"
	BtnClose        = "Close"
	BtnImage        = "🖼 %s"
)
