package locale

import (
	"testing"

	convey "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"
)

func TestSet(t *testing.T) {
	convey.Convey("Given the default locale", t, func() {
		Reset()
		defer Reset()

		convey.Convey("a BCP-47 tag is accepted", func() {
			convey.So(Set("en-GB"), convey.ShouldBeNil)
			convey.So(Current().String(), convey.ShouldEqual, "en-GB")
		})

		convey.Convey("a POSIX spelling is accepted", func() {
			convey.So(Set("en_US.UTF-8"), convey.ShouldBeNil)
			convey.So(Current().String(), convey.ShouldEqual, "en-US")
		})

		convey.Convey("a legacy Windows spelling is accepted", func() {
			convey.So(Set("English_United States.1252"), convey.ShouldBeNil)
			convey.So(Current(), convey.ShouldResemble, language.AmericanEnglish)

			convey.So(Set("German_Germany.1252"), convey.ShouldBeNil)
			convey.So(Current(), convey.ShouldResemble, language.German)
		})

		convey.Convey("an unparseable name errors and leaves the locale alone", func() {
			before := Current()
			err := Set("!!definitely not a locale!!")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "cannot parse")
			convey.So(Current(), convey.ShouldResemble, before)
		})
	})
}

func TestTrySet(t *testing.T) {
	convey.Convey("Given the default locale", t, func() {
		Reset()
		defer Reset()

		convey.Convey("the first spelling that parses wins", func() {
			convey.So(TrySet("???", "de_DE.UTF-8", "en_US.UTF-8"), convey.ShouldBeNil)
			convey.So(Current().String(), convey.ShouldEqual, "de-DE")
		})

		convey.Convey("all spellings failing returns the last error", func() {
			err := TrySet("???", "!!!")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, `"!!!"`)
			convey.So(Current(), convey.ShouldResemble, language.AmericanEnglish)
		})

		convey.Convey("no spellings at all is an error", func() {
			convey.So(TrySet(), convey.ShouldNotBeNil)
		})
	})
}

func TestFormatting(t *testing.T) {
	convey.Convey("Given the en-US locale", t, func() {
		Reset()
		defer Reset()

		convey.Convey("floats group with commas and use a dot separator", func() {
			convey.So(FormatFloat(1234567.891, 2), convey.ShouldEqual, "1,234,567.89")
			convey.So(FormatFloat(0.5, 1), convey.ShouldEqual, "0.5")
		})

		convey.Convey("the fraction digit count is exact", func() {
			convey.So(FormatFloat(3, 2), convey.ShouldEqual, "3.00")
		})

		convey.Convey("integers group with commas", func() {
			convey.So(FormatInt(1000000), convey.ShouldEqual, "1,000,000")
		})

		convey.Convey("switching to de-DE swaps the separators", func() {
			convey.So(Set("de_DE"), convey.ShouldBeNil)
			convey.So(FormatFloat(1234.5, 1), convey.ShouldEqual, "1.234,5")
			convey.So(FormatInt(1000000), convey.ShouldEqual, "1.000.000")
		})
	})
}
