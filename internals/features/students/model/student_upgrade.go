// file: internals/features/students/model/student_upgrade.go
package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// feeAmountKeys: field nominal di allFee yang dulu kadang tersimpan sebagai string.
var feeAmountKeys = []string{
	"lastYearBalanceFee", "lastYearTransportFee",
	"tuitionFeesDiscount",
	"transportFee", "transportFeeDiscount",
	"hostelFee", "hostelFeeDiscount",
	"messFee", "messFeeDiscount",
}

// UpgradeStudentDocument memigrasikan dokumen student versi lama saat dibaca.
//   - allFee.tutionFeesDiscount  -> allFee.tuitionFeesDiscount
//   - finalTransportFee (root / allFee) -> allFee.transportFee
//   - nominal string ("4000", "") -> angka (json.Number, presisi utuh)
//   - status kosong -> current (data lama tidak punya status)
func UpgradeStudentDocument(doc map[string]any) {
	if doc == nil {
		return
	}

	allFee, _ := doc["allFee"].(map[string]any)
	if allFee == nil {
		allFee = map[string]any{}
		doc["allFee"] = allFee
	}

	renameKey(allFee, "tutionFeesDiscount", "tuitionFeesDiscount")
	renameKey(allFee, "finalTransportFee", "transportFee")
	if v, ok := doc["finalTransportFee"]; ok {
		if _, has := allFee["transportFee"]; !has {
			allFee["transportFee"] = v
		}
		delete(doc, "finalTransportFee")
	}

	for _, k := range feeAmountKeys {
		if v, ok := allFee[k]; ok {
			allFee[k] = toNumber(v)
		}
	}

	if sf, ok := allFee["schoolFees"].(map[string]any); ok {
		for _, k := range []string{"AdmissionFee", "TutionFee", "total"} {
			if v, ok := sf[k]; ok {
				sf[k] = toNumber(v)
			}
		}
		if _, has := sf["total"]; !has {
			sf["total"] = json.Number(toDecimal(sf["AdmissionFee"]).Add(toDecimal(sf["TutionFee"])).String())
		}
	}

	if txs, ok := doc["transactions"].([]any); ok {
		for _, raw := range txs {
			tx, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if v, ok := tx["amount"]; ok {
				tx["amount"] = toNumber(v)
			}
			if snap, ok := tx["feeSnapshot"].(map[string]any); ok {
				renameKey(snap, "tutionFeesDiscount", "tuitionFeesDiscount")
				renameKey(snap, "finalTransportFee", "transportFee")
				for _, k := range feeAmountKeys {
					if v, ok := snap[k]; ok {
						snap[k] = toNumber(v)
					}
				}
			}
		}
	}

	if s, _ := doc["status"].(string); strings.TrimSpace(s) == "" {
		doc["status"] = string(StudentStatusCurrent)
	}
	doc["schemaVersion"] = StudentSchemaVersion
}

func renameKey(m map[string]any, from, to string) {
	v, ok := m[from]
	if !ok {
		return
	}
	if _, has := m[to]; !has {
		m[to] = v
	}
	delete(m, from)
}

// toNumber: string angka -> json.Number, string kosong/rusak/null -> 0.
func toNumber(v any) any {
	switch x := v.(type) {
	case nil:
		return json.Number("0")
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return json.Number("0")
		}
		return json.Number(d.String())
	}
	return v
}

func toDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case json.Number:
		d, _ := decimal.NewFromString(x.String())
		return d
	case float64:
		return decimal.NewFromFloat(x)
	}
	return decimal.Zero
}
