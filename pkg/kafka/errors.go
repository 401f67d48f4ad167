package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("producer is closed")

	ErrConsumerClosed = errors.New("consumer is closed")

	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")
)
