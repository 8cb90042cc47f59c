package emap_test

import (
	"testing"

	"toiletsync/internal/adapters/emap"
)

const songshanPayload = `<?xml version="1.0" encoding="utf-8"?>
<iMapSDKOutput>
  <GeoPosition>
    <POIID> 123456 </POIID>
    <POIName>民生</POIName>
    <X>121565400</X>
    <Y>25060800</Y>
    <Telno> 0227171234 </Telno>
    <Address>台北市松山區民生東路四段1號</Address>
    <StoreImageTitle>02廁所,03ATM, 04座位區</StoreImageTitle>
    <OP_DAY>1234567</OP_DAY>
    <OP_TIME>24</OP_TIME>
  </GeoPosition>
  <GeoPosition>
    <POIID>223344</POIID>
    <POIName>敦化</POIName>
    <X>121.5490</X>
    <Y>25.0580</Y>
    <Telno>0227170000</Telno>
    <Address>台北市松山區敦化北路2號</Address>
    <StoreImageTitle>03ATM</StoreImageTitle>
    <OP_DAY>1234567</OP_DAY>
    <OP_TIME>24</OP_TIME>
  </GeoPosition>
  <GeoPosition>
    <POIID>999999</POIID>
    <POIName></POIName>
    <Address>no name</Address>
    <StoreImageTitle>02廁所</StoreImageTitle>
  </GeoPosition>
</iMapSDKOutput>`

func TestParseStores_Songshan(t *testing.T) {
	stores := emap.ParseStores(songshanPayload)
	if len(stores) != 2 {
		t.Fatalf("expected 2 stores (nameless block dropped), got %d", len(stores))
	}

	a := stores[0]
	if a.POIID != "123456" || a.Name != "民生" || a.Phone != "0227171234" {
		t.Fatalf("unexpected first store: %+v", a)
	}
	if !a.HasToilet {
		t.Fatalf("expected restroom for %s", a.POIID)
	}
	if len(a.Services) != 3 || a.Services[2] != "04座位區" {
		t.Fatalf("services not kept verbatim: %#v", a.Services)
	}
	if a.Lat < 25.06 || a.Lat > 25.061 || a.Lng < 121.565 || a.Lng > 121.566 {
		t.Fatalf("bad coords: %v,%v", a.Lat, a.Lng)
	}

	b := stores[1]
	if b.HasToilet {
		t.Fatalf("ATM-only store must not be classified as restroom")
	}
	if b.Lat != 25.058 || b.Lng != 121.549 {
		t.Fatalf("decimal coords should pass through: %v,%v", b.Lat, b.Lng)
	}
}

func TestParseRaw_Malformed(t *testing.T) {
	if got := emap.ParseRaw("<html>maintenance</html>"); len(got) != 0 {
		t.Fatalf("expected no stores, got %d", len(got))
	}
	if got := emap.ParseRaw(""); len(got) != 0 {
		t.Fatalf("expected no stores for empty payload")
	}
}

func TestParseRaw_UnescapesEntities(t *testing.T) {
	p := `<GeoPosition><POIID>1</POIID><POIName>A&amp;B</POIName><Address>x</Address></GeoPosition>`
	got := emap.ParseRaw(p)
	if len(got) != 1 || got[0].Name != "A&B" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestHasRestroom(t *testing.T) {
	if !emap.HasRestroom(emap.SplitServices("03ATM,02廁所")) {
		t.Fatalf("restroom token not found")
	}
	if emap.HasRestroom(emap.SplitServices("03ATM")) {
		t.Fatalf("ATM only should be false")
	}
	if emap.HasRestroom(emap.SplitServices("")) {
		t.Fatalf("empty should be false")
	}
	if got := emap.SplitServices(" , 03ATM ,,"); len(got) != 1 || got[0] != "03ATM" {
		t.Fatalf("split: %#v", got)
	}
}
