/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package codec encodes exported entities as JSON, YAML or MessagePack and decodes
those formats back into generic maps.

Encoding goes through entity.ToOrderedMap, so every format writes attributes in
registry order:

	data, err := codec.Marshal(user, codec.YAML)

Decoding produces a map[string]any which entity.SetFromMap accepts directly;
numeric widening and date-time parsing happen in the setters' argument coercion:

	user := &models.User{}
	err := codec.Unmarshal(data, codec.YAML, user)
*/
package codec
