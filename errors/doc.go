/*
Package errors provides semantic error types for the entity library.

Attribute access failures are reported as *AttributeError values carrying a
Reason and the Kind configured on the entity that failed:

	u := &models.User{}
	err := entity.SetAttribute(u, "email1", "john@example.com")
	if errors.IsUnknownAttribute(err) {
	    // attempt to set non-existing attribute "email1"
	}

Kinds let entity families route failures separately:

	var ErrBilling = errors.NewKind("billing")

	invoice.SetErrorKind(ErrBilling)
	if _, err := entity.GetAttribute(invoice, "total"); errors.Is(err, ErrBilling) {
	    // handled by the billing path
	}

Entities without an explicit kind report under ErrEntity. Values a setter
cannot accept fail with a *ValidationError wrapped by WithKind, so they match
both ErrInvalidInput and the entity's kind.

Persistence errors:

	var (
	    ErrNotFound        = errors.New("entity not found")
	    ErrAlreadyExists   = errors.New("entity already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrNoIndexMap      = errors.New("no index map found for type")
	)

Wrapping and inspection (New, Wrap, Wrapf, Is, As) are re-exported from
github.com/cockroachdb/errors.
*/
package errors
