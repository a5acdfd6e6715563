/*
Package registry discovers and caches per-type entity metadata.

Attribute Registry:
For every concrete entity type the registry computes, once, the ordered list
of attribute names and the accessor table used to reach them. Names come from
the first source that applies:

  - an explicit table registered with RegisterAttributes
  - an AttributeNames() []string method on the type
  - the type's declared struct fields, ancestors (embedded structs) first

	type Message struct {
	    entity.Base
	    datetime strfmt.DateTime
	    userId   int
	    text     string
	}

	type Post struct {
	    Message
	    title  string
	    labels []string
	}

	registry.Lookup(reflect.TypeOf(Post{})).Names()
	// [datetime userId text title labels]

Entries are cached in a sync.Map keyed by reflect.Type and are safe for
concurrent first access. Reset drops every entry.

Type Registry:
Maps entity type names to factories so stored items can be rebuilt into the
right concrete type:

	registry.RegisterType("User", func() any {
	    return &User{}
	})

Index Map Registry:
Associates Go types with DynamoDB key templates whose macros name attributes:

	registry.RegisterIndexMap[User](map[string]string{
	    "PK": "USER#{email}",
	    "SK": "PROFILE",
	})

Registrations should happen during initialization, typically in init().
*/
package registry
