/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/entity"
	"github.com/suparena/entity/errors"
	"github.com/suparena/entity/storagemodels"
)

// TimeRangeQueryBuilder queries a GSI whose sort key template holds a
// date-time attribute, e.g. "POST#{datetime}". Times are rendered the way
// strfmt.DateTime values are stored, in UTC, so ranges compare correctly
// against keys written from UTC values.
type TimeRangeQueryBuilder[T any] struct {
	*GSIQueryBuilder[T]
}

// QueryByTimeRange creates a new time-based query builder on GSI1.
func (d *DynamodbDataStore[T, PT]) QueryByTimeRange(partitionKey string) *TimeRangeQueryBuilder[T] {
	return &TimeRangeQueryBuilder[T]{
		GSIQueryBuilder: d.QueryGSI().WithPartitionKey(partitionKey),
	}
}

// FormatTime renders t as it appears in stored keys.
func FormatTime(t time.Time) string {
	return strfmt.DateTime(t.UTC()).String()
}

// InLast queries items from the last d.
func (q *TimeRangeQueryBuilder[T]) InLast(d time.Duration) *TimeRangeQueryBuilder[T] {
	return q.After(time.Now().Add(-d))
}

// Between queries items between two timestamps, both inclusive.
func (q *TimeRangeQueryBuilder[T]) Between(start, end time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyBetween(FormatTime(start), FormatTime(end))
	return q
}

// After queries items after a specific timestamp
func (q *TimeRangeQueryBuilder[T]) After(timestamp time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyGreaterThan(FormatTime(timestamp))
	return q
}

// Before queries items before a specific timestamp
func (q *TimeRangeQueryBuilder[T]) Before(timestamp time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyLessThan(FormatTime(timestamp))
	return q
}

// Today queries items from the current local day.
func (q *TimeRangeQueryBuilder[T]) Today() *TimeRangeQueryBuilder[T] {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return q.Between(startOfDay, startOfDay.Add(24*time.Hour))
}

// Latest returns results in descending time order (newest first)
func (q *TimeRangeQueryBuilder[T]) Latest() *TimeRangeQueryBuilder[T] {
	q.params.ScanIndexForward = aws.Bool(false)
	return q
}

// Oldest returns results in ascending time order (oldest first)
func (q *TimeRangeQueryBuilder[T]) Oldest() *TimeRangeQueryBuilder[T] {
	q.params.ScanIndexForward = aws.Bool(true)
	return q
}

// WithLimit sets the query limit
func (q *TimeRangeQueryBuilder[T]) WithLimit(limit int32) *TimeRangeQueryBuilder[T] {
	q.GSIQueryBuilder.WithLimit(limit)
	return q
}

// TimeWindowIterator walks a time range in fixed windows.
type TimeWindowIterator[T any, PT entity.Pointer[T]] struct {
	store        *DynamodbDataStore[T, PT]
	partitionKey string
	windowSize   time.Duration
	endTime      time.Time
	current      time.Time
}

// QueryTimeWindows creates an iterator for querying [start, end) in windows of windowSize.
func (d *DynamodbDataStore[T, PT]) QueryTimeWindows(partitionKey string, start, end time.Time, windowSize time.Duration) *TimeWindowIterator[T, PT] {
	return &TimeWindowIterator[T, PT]{
		store:        d,
		partitionKey: partitionKey,
		windowSize:   windowSize,
		endTime:      end,
		current:      start,
	}
}

// Next returns the next window of results and whether more windows follow.
// Window bounds are inclusive, so an item exactly on a boundary is returned twice.
func (it *TimeWindowIterator[T, PT]) Next(ctx context.Context) ([]*T, bool, error) {
	if it.windowSize <= 0 {
		return nil, false, errors.NewValidationError("windowSize", "must be positive")
	}
	if !it.current.Before(it.endTime) {
		return nil, false, nil
	}

	windowEnd := it.current.Add(it.windowSize)
	if windowEnd.After(it.endTime) {
		windowEnd = it.endTime
	}

	results, err := it.store.QueryByTimeRange(it.partitionKey).
		Between(it.current, windowEnd).
		Oldest().
		Execute(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to query time window")
	}

	it.current = windowEnd
	return results, it.current.Before(it.endTime), nil
}

// QueryLatestItems queries the N most recent items
func (d *DynamodbDataStore[T, PT]) QueryLatestItems(ctx context.Context, partitionKey string, limit int32) ([]*T, error) {
	return d.QueryByTimeRange(partitionKey).
		Latest().
		WithLimit(limit).
		Execute(ctx)
}

// QueryItemsSince queries all items after a timestamp, newest first.
func (d *DynamodbDataStore[T, PT]) QueryItemsSince(ctx context.Context, partitionKey string, since time.Time) ([]*T, error) {
	return d.QueryByTimeRange(partitionKey).
		After(since).
		Latest().
		Execute(ctx)
}

// QueryItemsInDateRange queries items within a date range in chronological order.
func (d *DynamodbDataStore[T, PT]) QueryItemsInDateRange(ctx context.Context, partitionKey string, start, end time.Time) ([]*T, error) {
	return d.QueryByTimeRange(partitionKey).
		Between(start, end).
		Oldest().
		Execute(ctx)
}

// StreamLatestItems streams items in reverse chronological order.
func (d *DynamodbDataStore[T, PT]) StreamLatestItems(ctx context.Context, partitionKey string, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[*T] {
	return d.QueryByTimeRange(partitionKey).
		Latest().
		Stream(ctx, opts...)
}
