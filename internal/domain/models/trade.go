package models

import "time"

// TradeRecord represents one normalized row of an exchange trading bulletin.
//
// Optional columns are pointers so that a blank, "-" or non-numeric cell in the
// source sheet is persisted as NULL instead of a zero value.
//
// Column mapping (bulletin header → field):
//  1. Код Инструмента                         → ExchangeProductID
//  2. Наименование Инструмента                → ExchangeProductName
//  3. Базис поставки                          → DeliveryBasisID
//  4. Объем Договоров в единицах измерения    → Volume
//  5. Обьем Договоров, руб.                   → Total
//  6. Цена в Заявках (за единицу измерения)   → DeliveryTypeID
//  7. Количество Договоров, шт.               → Count
type TradeRecord struct {
	ExchangeProductID   string
	ExchangeProductName string
	OilID               *string
	DeliveryBasisID     string
	DeliveryBasisName   string
	DeliveryTypeID      *string
	Volume              *float64
	Total               *float64
	Count               *int64
	TradeDate           time.Time
}

// Batch is the full set of records parsed from one bulletin file.
// It travels through the ingestion queue as a single unit.
type Batch struct {
	SourceURL string
	TradeDate time.Time
	Records   []TradeRecord
}

// TradeDate truncates t to a UTC calendar date.
func TradeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
