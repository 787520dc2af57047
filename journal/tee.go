package journal

import "errors"

type tee []Journal

// Tee fans records out to several journals. The first one is the source of
// truth the account is rebuilt from, so it is written last: a record that
// fails on any other journal never reaches it. Writing stops at the first
// failure. Close closes all of them.
func Tee(local Journal, others ...Journal) Journal {
	return tee(append(append([]Journal{}, others...), local))
}

func (t tee) RecordTrade(r TradeRecord) error {
	for _, j := range t {
		if err := j.RecordTrade(r); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) RecordEquity(e EquitySnapshot) error {
	for _, j := range t {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}

// BookTrade books on each journal in write order, atomically on those that
// support it.
func (t tee) BookTrade(r TradeRecord, e EquitySnapshot) error {
	for _, j := range t {
		if err := book(j, r, e); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) Close() error {
	var errs []error
	for _, j := range t {
		errs = append(errs, j.Close())
	}
	return errors.Join(errs...)
}
