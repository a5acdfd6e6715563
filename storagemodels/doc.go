/*
Package storagemodels defines the data structures shared by datastore implementations.

QueryParams carries the parameters of a DynamoDB Query:

	params := &storagemodels.QueryParams{
	    KeyConditionExpression: "PK = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "USER#john@example.com"},
	    },
	    IndexName: aws.String("GSI1"),
	    Limit:     aws.Int32(100),
	}

StreamResult, StreamOptions and StreamProgress describe streamed queries;
options are set with the With* functional options.

The in-memory mock store only honors Limit and the ":pk" placeholder, which it
matches against its own keys.
*/
package storagemodels
