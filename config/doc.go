/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package config loads runtime settings from a .env file, an optional config
file and the environment.

The AWS settings keep their historical variable names:

	AWS_ACCESS_KEY, AWS_SECRET_KEY, AWS_REGION, AWS_DDB_TABLE

Every setting can also be given with the ENTITY_ prefix, e.g. ENTITY_LOG_LEVEL
or ENTITY_OUTPUT_FORMAT, which takes precedence over the unprefixed names.
*/
package config
