/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"maps"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/entity"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/logger"
	"github.com/suparena/entity/storagemodels"
)

// Stream runs a query page by page and sends every item, rebuilt through its
// EntityType, on the returned channel. Items that cannot be rebuilt are sent
// as error results; the ErrorHandler option decides whether streaming goes on
// after one. A page that still fails after the retries ends the stream with
// an error result. The channel is closed when the stream ends or ctx is done.
func (t *Table) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[entity.Entity] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	resultCh := make(chan storagemodels.StreamResult[entity.Entity], max(options.BufferSize, 0))
	if params == nil {
		resultCh <- storagemodels.StreamResult[entity.Entity]{
			Error: errors.NewValidationError("params", "query parameters required"),
			Meta:  storagemodels.StreamMeta{Timestamp: time.Now()},
		}
		close(resultCh)
		return resultCh
	}

	go t.streamWorker(ctx, params, options, resultCh)
	return resultCh
}

func (t *Table) streamWorker(
	ctx context.Context,
	params *storagemodels.QueryParams,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[entity.Entity],
) {
	defer close(resultCh)

	var (
		itemIndex  int64
		pageNumber int
		errs       []error
		startTime  = time.Now()
	)

	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			LastKey:        lastKey,
			Errors:         errs,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(itemIndex) / elapsed
		}
		options.ProgressHandler(progress)
	}

	send := func(r storagemodels.StreamResult[entity.Entity]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- r:
			return true
		}
	}

	tableName := params.TableName
	if tableName == "" {
		tableName = t.name
	}
	input := &sdk.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    aws.String(params.KeyConditionExpression),
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     aws.Int32(options.PageSize),
		ExclusiveStartKey:         params.ExclusiveStartKey,
		ScanIndexForward:          params.ScanIndexForward,
	}

	for {
		out, err := t.queryWithRetry(ctx, input, options)
		if err != nil {
			if ctx.Err() == nil {
				send(storagemodels.StreamResult[entity.Entity]{
					Error: err,
					Meta:  storagemodels.StreamMeta{Index: itemIndex, PageNumber: pageNumber, Timestamp: time.Now()},
				})
			}
			return
		}
		pageNumber++

		for _, item := range out.Items {
			result := storagemodels.StreamResult[entity.Entity]{
				Raw:  maps.Clone(item),
				Meta: storagemodels.StreamMeta{Index: itemIndex, PageNumber: pageNumber, Timestamp: time.Now()},
			}
			result.Item, result.Error = decodeItem(item)
			itemIndex++

			if !send(result) {
				return
			}
			if result.Error != nil {
				errs = append(errs, result.Error)
				if options.ErrorHandler != nil && !options.ErrorHandler(result.Error) {
					return
				}
			}
		}

		reportProgress(out.LastEvaluatedKey)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	reportProgress(nil)
	logger.Debugw("stream finished",
		logger.FieldTable, tableName,
		logger.FieldCount, itemIndex)
}

// queryWithRetry retries transient failures with a linearly growing backoff.
func (t *Table) queryWithRetry(ctx context.Context, input *sdk.QueryInput, options storagemodels.StreamOptions) (*sdk.QueryOutput, error) {
	var lastErr error
	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := t.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return nil, errors.Wrap(err, "query error")
		}

		if attempt < options.MaxRetries {
			logger.Warnw("retrying query",
				logger.FieldTable, aws.ToString(input.TableName),
				logger.FieldError, err.Error())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * options.RetryBackoff):
			}
		}
	}
	return nil, errors.Wrapf(lastErr, "query failed after %d retries", options.MaxRetries)
}

func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// Stream is Table.Stream narrowed to T. Items of other types sharing the
// partition are skipped.
func (d *DynamodbDataStore[T, PT]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[*T] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	in := d.table.Stream(ctx, params, opts...)
	out := make(chan storagemodels.StreamResult[*T], max(options.BufferSize, 0))

	go func() {
		defer close(out)
		for r := range in {
			typed := storagemodels.StreamResult[*T]{Raw: r.Raw, Error: r.Error, Meta: r.Meta}
			if r.Error == nil {
				pt, ok := r.Item.(PT)
				if !ok {
					continue
				}
				typed.Item = (*T)(pt)
			}
			select {
			case <-ctx.Done():
				// drain so the table worker can exit
				for range in {
				}
				return
			case out <- typed:
			}
		}
	}()
	return out
}
